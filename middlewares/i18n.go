package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// I18nConfig configures the I18n middleware.
type I18nConfig struct {
	Resolver        internal.Resolver
	Logger          *slog.Logger
	ContentLanguage bool
}

// I18nOption configures I18nConfig.
type I18nOption func(*I18nConfig)

// WithI18nResolver overrides the service resolver for this middleware.
func WithI18nResolver(r internal.Resolver) I18nOption {
	return func(cfg *I18nConfig) {
		cfg.Resolver = r
	}
}

// WithI18nLogger sets the logger used when the locale cannot be resolved.
func WithI18nLogger(l *slog.Logger) I18nOption {
	return func(cfg *I18nConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithContentLanguage sets the Content-Language response header to the resolved locale.
func WithContentLanguage() I18nOption {
	return func(cfg *I18nConfig) {
		cfg.ContentLanguage = true
	}
}

// I18n returns middleware that resolves the request locale and stores a
// LocaleContext in the request context. A resolver failure is logged and
// the default locale is used.
func I18n(svc *internal.Service, opts ...I18nOption) func(http.Handler) http.Handler {
	cfg := &I18nConfig{Logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	var override []internal.Resolver
	if cfg.Resolver != nil {
		override = append(override, cfg.Resolver)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lc, err := svc.LocaleContext(r, override...)
			if err != nil {
				cfg.Logger.WarnContext(r.Context(), "failed to resolve locale", slog.Any("error", err))
				lc = internal.NewLocaleContext(svc, svc.DefaultLocale())
			}

			if cfg.ContentLanguage {
				w.Header().Set("Content-Language", lc.Locale)
			}

			ctx := internal.WithLocaleContext(r.Context(), lc)
			ctx = internal.WithRequest(ctx, r)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLocale returns the locale resolved by the I18n middleware.
// Returns an empty string if the middleware is not used.
func GetLocale(r *http.Request) string {
	return internal.LocaleFromContext(r.Context())
}

// GetLocaleContext returns the LocaleContext stored by the I18n middleware.
// Returns nil if the middleware is not used.
func GetLocaleContext(r *http.Request) *internal.LocaleContext {
	lc, _ := internal.LocaleContextFrom(r.Context())
	return lc
}

// LocaleExtractor returns a logger.ContextExtractor that adds "locale" to
// log entries of requests handled by the I18n middleware.
func LocaleExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := internal.LocaleFromContext(ctx); v != "" {
			return slog.String("locale", v), true
		}
		return slog.Attr{}, false
	}
}

// requestLocale returns the locale stored by I18n, or resolves it.
func requestLocale(svc *internal.Service, r *http.Request) (string, error) {
	if lc, ok := internal.LocaleContextFrom(r.Context()); ok {
		return lc.Locale, nil
	}
	return svc.GetExactLocaleFromRequest(r)
}
