package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type WorkerFn func(ctx context.Context, index int) error

// ForEach runs fn for every index in [0, tasks) with at most concurrency
// calls in flight. The first error cancels ctx for the remaining tasks and is
// returned.
func ForEach(ctx context.Context, concurrency int, tasks int, fn WorkerFn) error {
	if concurrency < 1 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < tasks; i++ {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, idx)
		})
	}
	return g.Wait()
}
