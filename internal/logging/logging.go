// Package logging builds the structured loggers used across rocksonic.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w (stderr when nil) at the named
// level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    lvl == log.DebugLevel,
		TimeFormat:      time.TimeOnly,
		Level:           lvl,
	})
	return logger, nil
}

// ParseLevel parses a level name; an empty name means info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// Component returns a child logger tagged with the component name. A nil
// parent yields a discarding logger.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l.With("component", name)
}
