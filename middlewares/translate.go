package middlewares

import (
	"bytes"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// DefaultMaxTranslateBody is the largest JSON body Translate rewrites.
const DefaultMaxTranslateBody = 4 << 20

// TranslateConfig configures the Translate middleware.
type TranslateConfig struct {
	Logger  *slog.Logger
	MaxBody int64
}

// TranslateOption configures TranslateConfig.
type TranslateOption func(*TranslateConfig)

// WithTranslateLogger sets the logger for bodies that cannot be rewritten.
func WithTranslateLogger(l *slog.Logger) TranslateOption {
	return func(cfg *TranslateConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithTranslateMaxBody sets the largest body to rewrite; larger bodies
// are streamed unchanged. Zero or less disables the limit.
func WithTranslateMaxBody(n int64) TranslateOption {
	return func(cfg *TranslateConfig) {
		cfg.MaxBody = n
	}
}

// Translate returns middleware that translates JSON response bodies into
// the request locale. Bodies of other content types, HEAD requests,
// compressed or streamed responses pass through unchanged.
//
// A body with nothing to translate is written back byte for byte. A
// rewritten body is re-encoded without HTML escaping; object keys come
// out sorted.
//
// When translation fails with an *HTTPError, that error's own payload is
// translated and written with its status instead of the original body.
func Translate(svc *internal.Service, opts ...TranslateOption) func(http.Handler) http.Handler {
	cfg := &TranslateConfig{
		Logger:  logger.NewNope(),
		MaxBody: DefaultMaxTranslateBody,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := newCaptureWriter(w, r, cfg.MaxBody)
			next.ServeHTTP(cw, r)

			if !cw.captured() {
				return
			}
			if err := rewrite(w, r, svc, cw); err != nil {
				cfg.Logger.WarnContext(r.Context(), "failed to write translated response", slog.Any("error", err))
			}
		})
	}
}

func rewrite(w http.ResponseWriter, r *http.Request, svc *internal.Service, cw *captureWriter) error {
	body := cw.buf.Bytes()
	if len(bytes.TrimSpace(body)) == 0 {
		return writeRaw(w, cw.status, body)
	}

	var payload any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return writeRaw(w, cw.status, body)
	}

	locale, err := requestLocale(svc, r)
	if err != nil {
		locale = svc.DefaultLocale()
	}

	out, err := svc.Translate(internal.WithRequest(r.Context(), r), locale, payload)
	if err != nil {
		if httpErr := internal.AsHTTPError(err); httpErr != nil {
			w.Header().Del("Content-Length")
			return renderError(w, r, svc, locale, httpErr)
		}
		return writeRaw(w, cw.status, body)
	}

	// Untouched bodies keep their original bytes and key order.
	if reflect.DeepEqual(out, payload) {
		return writeRaw(w, cw.status, body)
	}

	encoded, err := json.MarshalNoEscape(out)
	if err != nil {
		return writeRaw(w, cw.status, body)
	}
	return writeRaw(w, cw.status, encoded)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}
