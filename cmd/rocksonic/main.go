package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koriwi/rocksonic/internal/app"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, subsonic.ErrConnection):
			fmt.Fprintln(os.Stderr, app.ConnectionHint)
			fmt.Fprintln(os.Stderr, err)
		case !errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
