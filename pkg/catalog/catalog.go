package catalog

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// Source loads a complete dictionary.
type Source interface {
	Load(ctx context.Context) (internal.Dictionary, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (internal.Dictionary, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) (internal.Dictionary, error) {
	return f(ctx)
}

// Static returns a Source that always yields dict.
func Static(dict internal.Dictionary) Source {
	return SourceFunc(func(context.Context) (internal.Dictionary, error) {
		return dict, nil
	})
}

// Merge returns a Source that loads every source in order. Later sources
// override keys of earlier ones; locales are merged case-insensitively
// under the spelling seen first.
func Merge(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context) (internal.Dictionary, error) {
		out := internal.Dictionary{}
		for _, src := range sources {
			if src == nil {
				return nil, ErrNilSource
			}
			dict, err := src.Load(ctx)
			if err != nil {
				return nil, err
			}
			mergeInto(out, dict)
		}
		return out, nil
	})
}

func mergeInto(dst, src internal.Dictionary) {
	for locale, entries := range src {
		target, ok := internal.MatchLocale(internal.MatchExact, locale, dst.Locales())
		if !ok {
			target = locale
			dst[target] = make(map[string]string, len(entries))
		}
		maps.Copy(dst[target], entries)
	}
}

// Store resolves single keys for an exact locale.
type Store interface {
	Get(ctx context.Context, locale, key string) (string, bool, error)
	Locales(ctx context.Context) ([]string, error)
}

// Middleware returns a translation middleware backed by store. The
// requested locale is matched against store.Locales with match; an empty
// match means exact.
func Middleware(store Store, match internal.MatchType) internal.Middleware {
	return func(ctx context.Context, locale, key string, _ internal.Next) (string, bool, error) {
		locales, err := store.Locales(ctx)
		if err != nil {
			return "", false, err
		}
		target, ok := internal.MatchLocale(match, locale, locales)
		if !ok {
			return "", false, nil
		}
		return store.Get(ctx, target, key)
	}
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for reload failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

type snapshot struct {
	dict    internal.Dictionary
	locales []string
}

// Catalog is an in-memory dictionary loaded from a Source. Reads never
// block: a reload swaps in a complete new snapshot.
type Catalog struct {
	source  Source
	logger  *slog.Logger
	current atomic.Pointer[snapshot]
	mu      sync.Mutex
}

// New loads source and returns the Catalog holding its dictionary.
func New(ctx context.Context, source Source, opts ...Option) (*Catalog, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	c := &Catalog{source: source, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload loads the source again. On failure the previous dictionary stays.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dict, err := c.source.Load(ctx)
	if err != nil {
		return err
	}
	if dict == nil {
		dict = internal.Dictionary{}
	}

	locales := dict.Locales()
	slices.Sort(locales)
	c.current.Store(&snapshot{dict: dict, locales: locales})
	c.logger.DebugContext(ctx, "catalog loaded", slog.Int("locales", len(locales)))
	return nil
}

// Dictionary returns the current dictionary. It must not be modified.
func (c *Catalog) Dictionary() internal.Dictionary {
	return c.current.Load().dict
}

// Get implements Store.
func (c *Catalog) Get(_ context.Context, locale, key string) (string, bool, error) {
	text, ok := c.current.Load().dict[locale][key]
	return text, ok, nil
}

// Locales implements Store.
func (c *Catalog) Locales(context.Context) ([]string, error) {
	return c.current.Load().locales, nil
}

// Middleware returns a translation middleware serving the current dictionary.
func (c *Catalog) Middleware(match internal.MatchType) internal.Middleware {
	return Middleware(c, match)
}
