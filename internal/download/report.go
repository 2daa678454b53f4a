package download

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-runewidth"

	"github.com/koriwi/rocksonic/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a sync progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Outcome is set for per-track report lines.
	Outcome *model.Outcome
}

// Reporter turns completed outcomes into numbered report lines.
//
// Lines are emitted in completion order. The counter is incremented exactly
// once per outcome, so the prefixes run 1/N..N/N without gaps.
type Reporter struct {
	total     int
	width     int
	completed atomic.Int64
	mu        sync.Mutex
	emit      func(ProgressEvent)
}

// NewReporter creates a Reporter for tracks. Titles are padded to the widest
// title so the action column lines up.
func NewReporter(tracks []model.Track, emit func(ProgressEvent)) *Reporter {
	width := 0
	for _, t := range tracks {
		if w := runewidth.StringWidth(t.DisplayTitle()); w > width {
			width = w
		}
	}
	return &Reporter{total: len(tracks), width: width, emit: emit}
}

// Report records one finished track and emits its line.
func (r *Reporter) Report(o model.Outcome) ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int(r.completed.Add(1))
	event := ProgressEvent{
		Message: FormatLine(n, r.total, r.width, o),
		Level:   levelOf(o),
		Outcome: &o,
	}
	if r.emit != nil {
		r.emit(event)
	}
	return event
}

// Completed returns the number of reported tracks.
func (r *Reporter) Completed() int {
	return int(r.completed.Load())
}

// Total returns the number of tracks in the batch.
func (r *Reporter) Total() int {
	return r.total
}

// FormatLine renders a report line:
//
//	3/10 Song     downloaded, cover embedded
//	4/10 Song (1): download: connection reset
func FormatLine(n, total, width int, o model.Outcome) string {
	if o.Err != nil {
		return fmt.Sprintf("%d/%d %v", n, total, o.Err)
	}
	return fmt.Sprintf("%d/%d %s %s", n, total, runewidth.FillRight(o.Track.DisplayTitle(), width), o.Actions)
}

func levelOf(o model.Outcome) ProgressLevel {
	switch {
	case o.Failed():
		return LevelError
	case o.Skipped():
		return LevelInfo
	default:
		return LevelSuccess
	}
}

// Summary counts outcomes by class.
type Summary struct {
	Total      int
	Downloaded int
	Covers     int
	Converted  int
	Embedded   int
	Skipped    int
	Failed     int
}

// Summarize classifies outcomes. A track counts once in every action class
// it took part in; Skipped and Failed are exclusive.
func Summarize(outcomes []model.Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Failed():
			s.Failed++
			continue
		case o.Skipped():
			s.Skipped++
			continue
		}
		if o.Actions.Contains(model.Downloaded) {
			s.Downloaded++
		}
		if o.Actions.Contains(model.CoverDownloaded) || o.Actions.Contains(model.CoverExtracted) {
			s.Covers++
		}
		if o.Actions.Contains(model.Converted) {
			s.Converted++
		}
		if o.Actions.Contains(model.CoverEmbedded) {
			s.Embedded++
		}
	}
	return s
}

// Succeeded returns the number of tracks that did not fail.
func (s Summary) Succeeded() int {
	return s.Total - s.Failed
}
