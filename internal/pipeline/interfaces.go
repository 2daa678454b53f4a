package pipeline

import (
	"context"
	"io"

	"github.com/koriwi/rocksonic/internal/media"
	"github.com/koriwi/rocksonic/internal/model"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Source,Media,Resizer,Tagger

// Source fetches raw bytes from the server. *subsonic.Client implements it.
type Source interface {
	// Download streams the song. bitrate 0 means the original file.
	Download(ctx context.Context, id string, bitrate uint) (io.ReadCloser, error)

	// CoverArt streams the cover scaled to size pixels. A missing cover is
	// reported as an error for which subsonic.IsNotFound is true.
	CoverArt(ctx context.Context, id string, size int) (io.ReadCloser, error)
}

// Media runs ffmpeg operations. *media.FFmpeg implements it.
type Media interface {
	Probe(ctx context.Context, path string) (media.ProbeResult, error)
	Run(ctx context.Context, op media.Operation) error
}

// Resizer produces the resized cover. *ioutils.ImageService implements it.
type Resizer interface {
	ResizeFile(ctx context.Context, src, dst string, width int) error
}

// Tagger writes metadata into MP3 outputs. *audio.Tagger implements it.
type Tagger interface {
	Apply(path string, track model.Track) error
}
