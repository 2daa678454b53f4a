package download

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool width used when none is configured.
const DefaultWorkers = 5

// Pool runs jobs on a fixed number of goroutines. A Pool is created per
// session and holds no state between runs.
type Pool struct {
	width int
}

// NewPool returns a Pool of the given width; width < 1 means
// DefaultWorkers.
func NewPool(width int) *Pool {
	if width < 1 {
		width = DefaultWorkers
	}
	return &Pool{width: width}
}

// Width returns the number of concurrent workers.
func (p *Pool) Width() int {
	return p.width
}

// Run calls job for every index in [0, n) with at most Width calls in
// flight, and returns when all calls have returned. Jobs cannot fail the
// batch: they report their own results.
func (p *Pool) Run(ctx context.Context, n int, job func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(p.width)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			job(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
}
