package internal

import (
	"context"
	"net/http"
)

type (
	requestKey       struct{}
	localeContextKey struct{}
)

// WithRequest stores the request that triggered a translation in ctx.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFromContext returns the request stored by WithRequest.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// LocaleContext is a Service bound to one resolved locale, usually the
// locale of the current request.
type LocaleContext struct {
	svc    *Service
	Locale string
}

// NewLocaleContext binds svc to locale after resolving it to a supported tag.
func NewLocaleContext(svc *Service, locale string) *LocaleContext {
	return &LocaleContext{svc: svc, Locale: svc.ResolveExact(locale)}
}

// Service returns the underlying Service.
func (lc *LocaleContext) Service() *Service {
	return lc.svc
}

// Translate deep-translates v into the bound locale.
func (lc *LocaleContext) Translate(ctx context.Context, v any) (any, error) {
	return lc.svc.Translate(ctx, lc.Locale, v)
}

// TranslateString translates the placeholders of text into the bound locale.
func (lc *LocaleContext) TranslateString(ctx context.Context, text string) (string, error) {
	return lc.svc.TranslateString(ctx, lc.Locale, text)
}

// Lookup resolves a single key in the bound locale.
func (lc *LocaleContext) Lookup(ctx context.Context, key string) (string, bool, error) {
	return lc.svc.Lookup(ctx, lc.Locale, key)
}

// WithLocaleContext stores lc in ctx.
func WithLocaleContext(ctx context.Context, lc *LocaleContext) context.Context {
	return context.WithValue(ctx, localeContextKey{}, lc)
}

// LocaleContextFrom returns the LocaleContext stored in ctx.
func LocaleContextFrom(ctx context.Context) (*LocaleContext, bool) {
	lc, ok := ctx.Value(localeContextKey{}).(*LocaleContext)
	return lc, ok && lc != nil
}

// LocaleFromContext returns the locale stored in ctx, or an empty string.
func LocaleFromContext(ctx context.Context) string {
	if lc, ok := LocaleContextFrom(ctx); ok {
		return lc.Locale
	}
	return ""
}
