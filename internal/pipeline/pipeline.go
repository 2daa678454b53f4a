package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/koriwi/rocksonic/internal/model"
)

// Options are the per-session settings of a Pipeline.
type Options struct {
	// Layout derives every artifact path.
	Layout model.Layout

	// Cover selects where covers come from.
	Cover model.CoverStrategy

	// CoverSize is the size requested from the server for remote covers.
	// Zero means Layout.CoverWidth.
	CoverSize int

	// AlbumCover copies the resized cover into nested album directories.
	AlbumCover bool
}

// Pipeline drives one track through download, cover acquisition, cover
// transform and mux. Every stage checks for its output first and does
// nothing when it exists, so running a Pipeline twice is a no-op the second
// time.
//
// A Pipeline holds no per-track state and is safe for concurrent use.
type Pipeline struct {
	source  Source
	media   Media
	resizer Resizer
	tagger  Tagger
	opts    Options
	logger  *log.Logger
}

// New creates a Pipeline. tagger may be nil to leave MP3 tags as ffmpeg
// wrote them; logger may be nil.
func New(source Source, m Media, resizer Resizer, tagger Tagger, opts Options, logger *log.Logger) *Pipeline {
	if opts.CoverSize <= 0 {
		opts.CoverSize = opts.Layout.CoverWidth
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		source:  source,
		media:   m,
		resizer: resizer,
		tagger:  tagger,
		opts:    opts,
		logger:  logger,
	}
}

// Layout returns the layout the pipeline writes to.
func (p *Pipeline) Layout() model.Layout {
	return p.opts.Layout
}

// item is the state of one track moving through the stages.
type item struct {
	track    model.Track
	actions  model.Actions
	hasCover bool
}

func (it *item) record(a model.Action) {
	it.actions = append(it.actions, a)
}

type stageFunc func(ctx context.Context, it *item) error

// Run processes track and returns its outcome. It stops at the first failing
// stage; the error is an *ItemError.
func (p *Pipeline) Run(ctx context.Context, track model.Track) model.Outcome {
	it := &item{track: track}

	stages := []struct {
		stage Stage
		run   stageFunc
	}{
		{StageDownload, p.acquire},
		{StageCover, p.acquireCover},
		{StageTransform, p.transformCover},
		{StageMux, p.mux},
	}

	for _, s := range stages {
		err := ctx.Err()
		if err == nil {
			err = s.run(ctx, it)
		}
		if err != nil {
			p.logger.Debug("track failed", "id", track.ID, "stage", s.stage, "err", err)
			return model.Outcome{
				Track:   track,
				Actions: it.actions,
				Err:     &ItemError{Title: track.DisplayTitle(), ID: track.ID, Stage: s.stage, Err: err},
			}
		}
	}

	p.logger.Debug("track done", "id", track.ID, "actions", it.actions.String())
	return model.Outcome{Track: track, Actions: it.actions}
}
