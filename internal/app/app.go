// Package app wires settings into a connected client and a ready session.
// It is shared by the command line, the daemon and the terminal UI.
package app

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/koriwi/rocksonic/internal/audio"
	"github.com/koriwi/rocksonic/internal/config"
	"github.com/koriwi/rocksonic/internal/download"
	ioutils "github.com/koriwi/rocksonic/internal/io"
	"github.com/koriwi/rocksonic/internal/logging"
	"github.com/koriwi/rocksonic/internal/media"
	"github.com/koriwi/rocksonic/internal/pipeline"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

// ConnectionHint is printed when the server cannot be reached.
const ConnectionHint = "Could not connect to the server. Did you forget /rest ?"

// Connect opens a client for the server settings. The error wraps
// subsonic.ErrConnection when the ping fails.
func Connect(ctx context.Context, settings *config.Settings, logger *log.Logger) (*subsonic.Client, error) {
	return subsonic.Connect(ctx, settings.ClientOptions(logging.Component(logger, "subsonic")))
}

// Media returns the ffmpeg runner configured by settings, after checking
// that its binaries exist.
func Media(settings *config.Settings) (*media.FFmpeg, error) {
	ff := media.New(settings.Media.FFmpeg, settings.Media.FFprobe)
	if settings.Media.Probe == config.ProbeTags {
		ff.Prober = media.TagProber{}
	}
	if err := ff.Check(); err != nil {
		return nil, err
	}
	return ff, nil
}

// NewSession builds a session over remote using the library settings.
// opts overrides settings.SessionOptions when not nil.
func NewSession(remote download.Remote, settings *config.Settings, opts *download.Options, onProgress func(download.ProgressEvent), logger *log.Logger) (*download.Session, error) {
	ff, err := Media(settings)
	if err != nil {
		return nil, err
	}

	sessionOpts := settings.SessionOptions()
	if opts != nil {
		sessionOpts = *opts
	}

	var tagger pipeline.Tagger
	if settings.Library.ModifyTags {
		tagger = audio.NewTagger(audio.DefaultTagConfig())
	}

	return download.NewSession(remote, ff, ioutils.NewImageService(), tagger, sessionOpts, onProgress, logging.Component(logger, "session")), nil
}
