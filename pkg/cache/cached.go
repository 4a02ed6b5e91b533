package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/catalog"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// Option configures Cached.
type Option func(*Cached)

// WithTTL sets how long found texts are kept. Default: 10 minutes.
func WithTTL(d time.Duration) Option {
	return func(c *Cached) {
		c.ttl = d
	}
}

// WithMissTTL sets how long misses are kept. Zero disables miss caching.
// Default: 1 minute.
func WithMissTTL(d time.Duration) Option {
	return func(c *Cached) {
		c.missTTL = d
	}
}

// WithLocalesTTL sets how long the locale list of the inner store is
// kept. Default: 1 minute.
func WithLocalesTTL(d time.Duration) Option {
	return func(c *Cached) {
		c.localesTTL = d
	}
}

// WithLoadTimeout bounds a shared load from the inner store. A load is
// detached from the caller that started it, so it is not cut short when
// that caller goes away. Default: 30 seconds; zero disables the bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cached) {
		c.loadTimeout = d
	}
}

// WithLogger sets the logger for cache read and write failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cached puts a Store in front of a slower catalog.Store. Concurrent
// lookups of the same key share one call to the inner store. A failing
// cache is logged and bypassed; inner store errors are never cached.
type Cached struct {
	inner   catalog.Store
	entries Store
	logger  *slog.Logger
	group   singleflight.Group

	ttl         time.Duration
	missTTL     time.Duration
	localesTTL  time.Duration
	loadTimeout time.Duration

	mu        sync.Mutex
	locales   []string
	localesAt time.Time
}

// Wrap returns inner cached in entries.
func Wrap(inner catalog.Store, entries Store, opts ...Option) (*Cached, error) {
	if inner == nil || entries == nil {
		return nil, ErrNilStore
	}
	c := &Cached{
		inner:       inner,
		entries:     entries,
		logger:      logger.NewNope(),
		ttl:         10 * time.Minute,
		missTTL:     time.Minute,
		localesTTL:  time.Minute,
		loadTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func entryKey(locale, key string) string {
	return locale + "\x1f" + key
}

// Get implements catalog.Store.
func (c *Cached) Get(ctx context.Context, locale, key string) (string, bool, error) {
	k := entryKey(locale, key)

	e, ok, err := c.entries.Get(ctx, k)
	if err != nil {
		c.logger.WarnContext(ctx, "translation cache read failed", slog.String("locale", locale), slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		return e.Text, e.Found, nil
	}

	v, err := c.load(ctx, k, func(ctx context.Context) (any, error) {
		text, found, err := c.inner.Get(ctx, locale, key)
		if err != nil {
			return nil, err
		}
		e := Entry{Text: text, Found: found}
		if ttl := c.ttlFor(e); ttl > 0 {
			if err := c.entries.Set(ctx, k, e, ttl); err != nil {
				c.logger.WarnContext(ctx, "translation cache write failed", slog.String("locale", locale), slog.String("key", key), slog.Any("error", err))
			}
		}
		return e, nil
	})
	if err != nil {
		return "", false, err
	}
	e = v.(Entry)
	return e.Text, e.Found, nil
}

// load runs fn once per key for all concurrent callers. fn gets a context
// without the caller's cancellation; each caller still stops waiting when
// its own ctx is done.
func (c *Cached) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.loadTimeout)
			defer cancel()
		}
		return fn(lctx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cached) ttlFor(e Entry) time.Duration {
	if e.Found {
		return c.ttl
	}
	return c.missTTL
}

// Locales implements catalog.Store.
func (c *Cached) Locales(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.locales != nil && time.Since(c.localesAt) < c.localesTTL {
		locales := c.locales
		c.mu.Unlock()
		return locales, nil
	}
	c.mu.Unlock()

	v, err := c.load(ctx, "\x00locales", func(ctx context.Context) (any, error) {
		locales, err := c.inner.Locales(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.locales, c.localesAt = locales, time.Now()
		c.mu.Unlock()
		return locales, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Invalidate drops every cached entry and the cached locale list.
func (c *Cached) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.locales = nil
	c.mu.Unlock()
	return c.entries.Purge(ctx)
}

// Reload invalidates the cache, so a catalog.Reloader can refresh it.
func (c *Cached) Reload(ctx context.Context) error {
	return c.Invalidate(ctx)
}

// Middleware returns a translation middleware served through the cache.
func (c *Cached) Middleware(match internal.MatchType) internal.Middleware {
	return catalog.Middleware(c, match)
}

var _ catalog.Store = (*Cached)(nil)
