package download

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koriwi/rocksonic/internal/model"
)

type fakeRunner struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     map[string]bool
}

func (r *fakeRunner) Run(ctx context.Context, track model.Track) model.Outcome {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	if err := ctx.Err(); err != nil {
		return model.Outcome{Track: track, Err: err}
	}
	if r.fail[track.ID] {
		return model.Outcome{Track: track, Err: fmt.Errorf("%s (%s): download: boom", track.Title, track.ID)}
	}
	return model.Outcome{Track: track, Actions: model.Actions{model.Downloaded}}
}

func makeTracks(n int) []model.Track {
	tracks := make([]model.Track, n)
	for i := range tracks {
		id := strconv.Itoa(i + 1)
		tracks[i] = model.Track{ID: id, Title: "Track " + id}
	}
	return tracks
}

type collector struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (c *collector) add(e ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) lines() []ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var lines []ProgressEvent
	for _, e := range c.events {
		if e.Outcome != nil {
			lines = append(lines, e)
		}
	}
	return lines
}

var prefix = regexp.MustCompile(`^(\d+)/(\d+) `)

func TestManager_EveryTrackReportedOnce(t *testing.T) {
	const total, width = 23, 4

	runner := &fakeRunner{}
	events := &collector{}
	m := NewManager(runner, NewPool(width), events.add, nil)

	tracks := makeTracks(total)
	outcomes := m.Run(context.Background(), tracks)

	require.Len(t, outcomes, total)
	for i, o := range outcomes {
		assert.Equal(t, tracks[i].ID, o.Track.ID, "outcomes keep input order")
	}

	lines := events.lines()
	require.Len(t, lines, total)
	seen := make(map[int]bool)
	for i, e := range lines {
		match := prefix.FindStringSubmatch(e.Message)
		require.NotNil(t, match, e.Message)
		n, _ := strconv.Atoi(match[1])
		assert.Equal(t, i+1, n, "counter increases with every line")
		assert.Equal(t, strconv.Itoa(total), match[2])
		assert.False(t, seen[n])
		seen[n] = true
	}

	assert.LessOrEqual(t, int(runner.peak.Load()), width)
	completed, all := m.GetProgress()
	assert.Equal(t, total, completed)
	assert.Equal(t, total, all)
}

func TestManager_FailuresDoNotStopTheBatch(t *testing.T) {
	runner := &fakeRunner{fail: map[string]bool{"2": true, "4": true}}
	events := &collector{}
	m := NewManager(runner, NewPool(2), events.add, nil)

	outcomes := m.Run(context.Background(), makeTracks(5))

	summary := Summarize(outcomes)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 3, summary.Downloaded)
	assert.Len(t, events.lines(), 5)

	var warned bool
	for _, e := range events.events {
		if e.Level == LevelWarning {
			warned = true
			assert.Equal(t, "2 of 5 tracks failed", e.Message)
		}
	}
	assert.True(t, warned)
}

func TestManager_CancelledContextReportsEveryTrack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := &collector{}
	m := NewManager(&fakeRunner{}, NewPool(3), events.add, nil)
	outcomes := m.Run(ctx, makeTracks(6))

	require.Len(t, events.lines(), 6)
	for _, o := range outcomes {
		assert.True(t, errors.Is(o.Err, context.Canceled))
	}
}

func TestManager_GetProgressBeforeRun(t *testing.T) {
	m := NewManager(&fakeRunner{}, nil, nil, nil)
	completed, total := m.GetProgress()
	assert.Zero(t, completed)
	assert.Zero(t, total)
}

func TestNewPool_DefaultWidth(t *testing.T) {
	assert.Equal(t, DefaultWorkers, NewPool(0).Width())
	assert.Equal(t, 7, NewPool(7).Width())
}
