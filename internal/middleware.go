package internal

import (
	"context"
	"log/slog"
	"sync"
)

// Next invokes the remaining middlewares for the same locale and key and
// returns their result.
type Next func() (string, bool, error)

// Middleware looks up the translation of key in locale.
//
// It returns (value, true, nil) to stop the chain with a value; an empty
// value is a valid hit. Returning ("", false, nil) without calling next
// moves on to the following middleware. A middleware may also call next
// and return its result. An error wrapping *HTTPError aborts the whole
// translation; any other error is logged and the chain continues.
type Middleware func(ctx context.Context, locale, key string, next Next) (string, bool, error)

// Handle identifies one middleware registration.
type Handle uint64

type registration struct {
	mw     Middleware
	handle Handle
}

// registry is the ordered middleware list of one Service.
// Dispatch works on a snapshot so registrations made mid-flight only
// affect later calls.
type registry struct {
	entries []registration
	seq     Handle
	mu      sync.RWMutex
}

func (r *registry) add(mw Middleware, front bool) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	reg := registration{mw: mw, handle: r.seq}

	entries := make([]registration, 0, len(r.entries)+1)
	if front {
		entries = append(entries, reg)
		entries = append(entries, r.entries...)
	} else {
		entries = append(entries, r.entries...)
		entries = append(entries, reg)
	}
	r.entries = entries

	return reg.handle
}

func (r *registry) remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.entries {
		if reg.handle != h {
			continue
		}
		entries := make([]registration, 0, len(r.entries)-1)
		entries = append(entries, r.entries[:i]...)
		entries = append(entries, r.entries[i+1:]...)
		r.entries = entries
		return true
	}
	return false
}

func (r *registry) snapshot() []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// dispatcher runs one snapshot of the middleware chain.
type dispatcher struct {
	logger  *slog.Logger
	entries []registration
}

// dispatch runs the chain for a single locale.
func (d dispatcher) dispatch(ctx context.Context, locale, key string) (string, bool, error) {
	return d.at(ctx, 0, locale, key)
}

func (d dispatcher) at(ctx context.Context, i int, locale, key string) (string, bool, error) {
	if i >= len(d.entries) {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	nextCalled := false
	next := func() (string, bool, error) {
		nextCalled = true
		return d.at(ctx, i+1, locale, key)
	}

	value, ok, err := d.entries[i].mw(ctx, locale, key, next)
	if err != nil {
		if IsHTTPError(err) || ctx.Err() != nil {
			return "", false, err
		}
		d.logger.WarnContext(ctx, "translation middleware failed",
			slog.Int("index", i),
			slog.String("locale", locale),
			slog.String("key", key),
			slog.Any("error", err),
		)
		if nextCalled {
			return "", false, nil
		}
		return d.at(ctx, i+1, locale, key)
	}

	if !ok && !nextCalled {
		return d.at(ctx, i+1, locale, key)
	}

	return value, ok, nil
}
