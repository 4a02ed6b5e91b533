package internal

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanout runs tasks concurrently. Wait returns as soon as one task fails or
// ctx is done; tasks still running are left to observe the cancelled
// context on their own and their results are discarded.
type fanout struct {
	g      *errgroup.Group
	ctx    context.Context
	parent context.Context
	failed chan error
}

func newFanout(ctx context.Context, limit int) *fanout {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &fanout{g: g, ctx: gctx, parent: ctx, failed: make(chan error, 1)}
}

// Go starts fn with the group context.
func (f *fanout) Go(fn func(ctx context.Context) error) {
	f.g.Go(func() error {
		err := fn(f.ctx)
		if err != nil {
			select {
			case f.failed <- err:
			default:
			}
		}
		return err
	})
}

func (f *fanout) Wait() error {
	done := make(chan error, 1)
	go func() { done <- f.g.Wait() }()

	select {
	case err := <-done:
		return err
	case err := <-f.failed:
		return err
	case <-f.parent.Done():
		return f.parent.Err()
	}
}
