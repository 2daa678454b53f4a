package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/koriwi/rocksonic/internal/app"
	"github.com/koriwi/rocksonic/internal/config"
	"github.com/koriwi/rocksonic/internal/download"
	"github.com/koriwi/rocksonic/internal/logging"
	"github.com/koriwi/rocksonic/internal/tui"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Configuration file path")
	output := pflag.StringP("output", "o", "", "Output directory (overrides config)")
	logFile := pflag.String("log-file", "", "Write logs to this file instead of discarding them")
	pflag.Parse()

	if err := run(*configPath, *output, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, output, logFile string) error {
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = path
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if output != "" {
		settings.Library.OutputDir = output
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s:\n%w", configPath, err)
	}

	// The alternate screen owns stdout and stderr.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, settings.Logging.Level)
	if err != nil {
		return err
	}

	start := func(ctx context.Context, opts download.Options, onProgress func(download.ProgressEvent)) (*download.Session, error) {
		client, err := app.Connect(ctx, settings, logger)
		if err != nil {
			return nil, fmt.Errorf("%s\n  %w", app.ConnectionHint, err)
		}
		return app.NewSession(client, settings, &opts, onProgress, logger)
	}

	return tui.Run(settings.SessionOptions(), start)
}
