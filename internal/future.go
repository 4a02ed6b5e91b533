package internal

import (
	"context"
	"sync"
)

// Awaiter is a value that becomes available later.
// Deep translation awaits it and translates whatever it resolves to.
type Awaiter interface {
	Await(ctx context.Context) (any, error)
}

// Future is a one-shot asynchronous value.
type Future struct {
	value any
	err   error
	done  chan struct{}
	once  sync.Once
}

// Go runs fn in a new goroutine and returns a Future for its result.
func Go(fn func() (any, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		v, err := fn()
		f.resolve(v, err)
	}()
	return f
}

// Resolved returns a Future that is already resolved with v.
func Resolved(v any) *Future {
	f := &Future{done: make(chan struct{})}
	f.resolve(v, nil)
	return f
}

// Rejected returns a Future that already failed with err.
func Rejected(err error) *Future {
	f := &Future{done: make(chan struct{})}
	f.resolve(nil, err)
	return f
}

func (f *Future) resolve(v any, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Await blocks until the Future resolves or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the Future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}
