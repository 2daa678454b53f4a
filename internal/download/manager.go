package download

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/koriwi/rocksonic/internal/model"
)

// Runner processes one track. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, track model.Track) model.Outcome
}

// Manager fans a track list out over a Pool and reports every outcome.
type Manager struct {
	runner     Runner
	pool       *Pool
	onProgress func(ProgressEvent)
	logger     *log.Logger

	reporter atomic.Pointer[Reporter]
}

// NewManager creates a new Manager. onProgress and logger may be nil.
func NewManager(runner Runner, pool *Pool, onProgress func(ProgressEvent), logger *log.Logger) *Manager {
	if pool == nil {
		pool = NewPool(DefaultWorkers)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		runner:     runner,
		pool:       pool,
		onProgress: onProgress,
		logger:     logger,
	}
}

// Run processes every track and returns the outcomes in input order. It
// never fails as a whole: per-track errors live in the outcomes.
func (m *Manager) Run(ctx context.Context, tracks []model.Track) []model.Outcome {
	outcomes := make([]model.Outcome, len(tracks))
	reporter := NewReporter(tracks, m.onProgress)
	m.reporter.Store(reporter)

	m.logger.Debug("starting batch", "tracks", len(tracks), "workers", m.pool.Width())
	m.pool.Run(ctx, len(tracks), func(ctx context.Context, i int) {
		outcome := m.runner.Run(ctx, tracks[i])
		outcomes[i] = outcome
		reporter.Report(outcome)
	})

	summary := Summarize(outcomes)
	m.logger.Debug("batch finished", "succeeded", summary.Succeeded(), "failed", summary.Failed)
	if summary.Failed > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%d of %d tracks failed", summary.Failed, summary.Total), Level: LevelWarning})
	}
	return outcomes
}

// GetProgress returns the number of completed and total tracks of the
// current batch.
func (m *Manager) GetProgress() (completed, total int) {
	r := m.reporter.Load()
	if r == nil {
		return 0, 0
	}
	return r.Completed(), r.Total()
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
