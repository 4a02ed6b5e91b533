package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
)

// Service translates placeholders in strings and object graphs.
// It is safe for concurrent use; the middleware list may be changed at any time.
type Service struct {
	locales     *Locales
	logger      *slog.Logger
	resolver    Resolver
	onMissing   MissingHandler
	opaque      map[reflect.Type]struct{}
	registry    registry
	concurrency int
}

// New creates a Service from the given options.
func New(opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if o.strict {
		if err := ValidateTags(o.locales...); err != nil {
			return nil, err
		}
	}

	locales, err := NewLocales(o.locales, o.defaultTag)
	if err != nil {
		return nil, err
	}

	s := &Service{
		locales:     locales,
		logger:      o.logger,
		resolver:    o.resolver,
		onMissing:   o.onMissing,
		opaque:      defaultOpaqueTypes(),
		concurrency: o.concurrency,
	}
	for _, t := range o.opaque {
		s.opaque[t] = struct{}{}
	}
	for _, mw := range o.middlewares {
		s.registry.add(mw, false)
	}

	return s, nil
}

// Locales returns the supported locale set.
func (s *Service) Locales() *Locales {
	return s.locales
}

// DefaultLocale returns the default locale.
func (s *Service) DefaultLocale() string {
	return s.locales.Default()
}

// ResolveExact maps a requested locale onto a supported one.
func (s *Service) ResolveExact(locale string) string {
	return s.locales.ResolveExact(locale)
}

// FallbackChain returns the locales tried, in order, for a requested locale.
func (s *Service) FallbackChain(locale string) []string {
	return s.locales.FallbackChain(locale)
}

// Use appends a middleware to the chain.
func (s *Service) Use(mw Middleware) Handle {
	if mw == nil {
		return 0
	}
	return s.registry.add(mw, false)
}

// UseFirst inserts a middleware in front of the chain.
func (s *Service) UseFirst(mw Middleware) Handle {
	if mw == nil {
		return 0
	}
	return s.registry.add(mw, true)
}

// Remove unregisters the middleware behind h.
// Reports whether it was registered.
func (s *Service) Remove(h Handle) bool {
	return s.registry.remove(h)
}

// Middlewares returns the number of registered middlewares.
func (s *Service) Middlewares() int {
	return s.registry.len()
}

func (s *Service) dispatcher() dispatcher {
	return dispatcher{logger: s.logger, entries: s.registry.snapshot()}
}

// Lookup resolves a single key through the fallback chain of locale.
func (s *Service) Lookup(ctx context.Context, locale, key string) (string, bool, error) {
	return s.lookup(ctx, s.dispatcher(), s.locales.FallbackChain(locale), key)
}

func (s *Service) lookup(ctx context.Context, d dispatcher, chain []string, key string) (string, bool, error) {
	for _, loc := range chain {
		value, ok, err := d.dispatch(ctx, loc, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return "", false, nil
}

// TranslateString replaces every placeholder in text with its translation.
//
// Placeholders are resolved concurrently. A placeholder that no locale in
// the fallback chain resolves is kept as written. The first hard failure
// cancels the remaining lookups and is returned unchanged, without waiting
// for lookups that are still running.
func (s *Service) TranslateString(ctx context.Context, locale, text string) (string, error) {
	if text == "" {
		return text, nil
	}

	exact := s.locales.ResolveExact(locale)
	segments := ParsePlaceholders(text)
	if !HasPlaceholders(segments) {
		return JoinSegments(segments), nil
	}

	chain := s.locales.FallbackChain(exact)
	d := s.dispatcher()
	parts := make([]string, len(segments))

	f := newFanout(ctx, 0)
	for i, seg := range segments {
		if !seg.IsPlaceholder() {
			parts[i] = seg.Text
			continue
		}
		f.Go(func(ctx context.Context) error {
			value, ok, err := s.lookup(ctx, d, chain, seg.Key)
			if err != nil {
				return err
			}
			if !ok {
				parts[i] = seg.String()
				s.missing(ctx, exact, seg.Key)
				return nil
			}
			parts[i] = value
			return nil
		})
	}
	if err := f.Wait(); err != nil {
		return "", err
	}

	return strings.Join(parts, ""), nil
}

func (s *Service) missing(ctx context.Context, locale, key string) {
	if s.onMissing == nil {
		return
	}
	s.onMissing(ctx, locale, key)
}

// Translate returns a copy of v with every string translated.
// See the package documentation for how each kind of value is handled.
func (s *Service) Translate(ctx context.Context, locale string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	w := newWalker(s, s.locales.ResolveExact(locale))
	out, err := w.visit(ctx, reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

// GetExactLocaleFromRequest resolves the supported locale for r using the
// configured resolver.
func (s *Service) GetExactLocaleFromRequest(r *http.Request) (string, error) {
	return s.LocaleFor(r)
}

// LocaleFor resolves the supported locale for r. When override is given it
// is used instead of the configured resolver.
func (s *Service) LocaleFor(r *http.Request, override ...Resolver) (string, error) {
	if r == nil {
		return "", ErrNilRequest
	}

	resolver := s.resolver
	if len(override) > 0 && override[0] != nil {
		resolver = override[0]
	}

	raw, err := resolver(r)
	if err != nil {
		return "", fmt.Errorf("lingo: resolve locale: %w", err)
	}

	return s.locales.ResolveExact(raw), nil
}

// TranslateRequest translates payload into the locale requested by r.
// The request is available to middlewares through RequestFromContext.
func (s *Service) TranslateRequest(r *http.Request, payload any) (any, error) {
	locale, err := s.GetExactLocaleFromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Translate(WithRequest(r.Context(), r), locale, payload)
}

// LocaleContext binds the service to the locale requested by r.
func (s *Service) LocaleContext(r *http.Request, override ...Resolver) (*LocaleContext, error) {
	locale, err := s.LocaleFor(r, override...)
	if err != nil {
		return nil, err
	}
	return &LocaleContext{Locale: locale, svc: s}, nil
}
