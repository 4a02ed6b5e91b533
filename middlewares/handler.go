package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// HandlerFunc returns a payload to be translated and rendered as JSON,
// or an error. A *HTTPError is rendered with its own status and payload.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) (any, error)

// HandleConfig configures Handle.
type HandleConfig struct {
	Logger *slog.Logger
}

// HandleOption configures HandleConfig.
type HandleOption func(*HandleConfig)

// WithHandleLogger sets the logger for handler and translation failures.
func WithHandleLogger(l *slog.Logger) HandleOption {
	return func(cfg *HandleConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// Handle adapts fn into an http.Handler. The returned payload is
// translated into the request locale and written as JSON; its status is
// taken from HTTPStatus() when the payload implements StatusCoder.
// Errors that are not *HTTPError become a 500 response.
func Handle(svc *internal.Service, fn HandlerFunc, opts ...HandleOption) http.Handler {
	cfg := &HandleConfig{Logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		locale, err := requestLocale(svc, r)
		if err != nil {
			cfg.Logger.WarnContext(ctx, "failed to resolve locale", slog.Any("error", err))
			locale = svc.DefaultLocale()
		}

		payload, err := fn(w, r)
		if err == nil {
			payload, err = svc.Translate(internal.WithRequest(ctx, r), locale, payload)
		}
		if err != nil {
			httpErr := internal.AsHTTPError(err)
			if httpErr == nil {
				if ctx.Err() != nil {
					return
				}
				cfg.Logger.ErrorContext(ctx, "handler failed", slog.Any("error", err))
				httpErr = internal.ErrInternal("", internal.WithError(err))
			}
			if err := renderError(w, r, svc, locale, httpErr); err != nil {
				cfg.Logger.WarnContext(ctx, "failed to write error response", slog.Any("error", err))
			}
			return
		}

		if payload == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := writeJSON(w, statusOf(payload), payload); err != nil {
			cfg.Logger.WarnContext(ctx, "failed to write response", slog.Any("error", err))
		}
	})
}
