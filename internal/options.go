package internal

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
)

// Option configures a Service during construction.
type Option func(*options) error

type options struct {
	logger      *slog.Logger
	resolver    Resolver
	onMissing   MissingHandler
	opaque      []reflect.Type
	defaultTag  string
	locales     []string
	middlewares []Middleware
	concurrency int
	strict      bool
}

// MissingHandler is called for every placeholder that stayed unresolved
// after the whole fallback chain was tried.
type MissingHandler func(ctx context.Context, locale, key string)

func defaultOptions() *options {
	return &options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolver: HeaderResolver("Accept-Language"),
	}
}

// WithLocales sets the supported locales. Order is kept; the first one is
// the default unless WithDefaultLocale says otherwise.
func WithLocales(tags ...string) Option {
	return func(o *options) error {
		for _, tag := range tags {
			if strings.TrimSpace(tag) == "" {
				return ErrEmptyLocale
			}
		}
		o.locales = append(o.locales, tags...)
		return nil
	}
}

// WithDefaultLocale sets the locale used when nothing else matches.
// It must be one of the supported locales.
func WithDefaultLocale(tag string) Option {
	return func(o *options) error {
		if strings.TrimSpace(tag) == "" {
			return ErrEmptyLocale
		}
		o.defaultTag = tag
		return nil
	}
}

// WithStrictLocales rejects supported locales that are not well-formed BCP 47 tags.
func WithStrictLocales() Option {
	return func(o *options) error {
		o.strict = true
		return nil
	}
}

// WithResolver sets how the raw locale is extracted from a request.
func WithResolver(r Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return ErrNilResolver
		}
		o.resolver = r
		return nil
	}
}

// WithLogger sets the logger. Middleware failures are logged at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		if l != nil {
			o.logger = l
		}
		return nil
	}
}

// WithMiddleware registers lookup middlewares in the given order.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) error {
		for _, mw := range mws {
			if mw == nil {
				return ErrNilMiddleware
			}
		}
		o.middlewares = append(o.middlewares, mws...)
		return nil
	}
}

// WithMissingHandler sets a callback for placeholders that no locale could resolve.
func WithMissingHandler(fn MissingHandler) Option {
	return func(o *options) error {
		o.onMissing = fn
		return nil
	}
}

// WithConcurrency bounds how many elements or fields of one container are
// translated at the same time. Zero or less means no bound.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		o.concurrency = n
		return nil
	}
}

// WithOpaqueTypes marks the types of the given sample values as leaves that
// deep translation copies without descending into them.
func WithOpaqueTypes(samples ...any) Option {
	return func(o *options) error {
		for _, s := range samples {
			if s == nil {
				continue
			}
			o.opaque = append(o.opaque, reflect.TypeOf(s))
		}
		return nil
	}
}
