// Package middlewares provides net/http middleware that puts a lingo
// Service in front of HTTP handlers.
//
// # I18n
//
// I18n resolves the request locale once and stores a LocaleContext in the
// request context:
//
//	r := chi.NewRouter()
//	r.Use(middlewares.I18n(svc, middlewares.WithContentLanguage()))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    lc := middlewares.GetLocaleContext(r)
//	    text, _ := lc.TranslateString(r.Context(), "#{greeting}")
//	}
//
// # Translate
//
// Translate buffers JSON responses and rewrites every placeholder in the
// body into the request locale. Other content types pass through:
//
//	r.Use(middlewares.Translate(svc))
//
// An *HTTPError raised by a translation middleware replaces the body with
// the error's own translated payload and status.
//
// # Handle
//
// Handle adapts a function returning (payload, error) into an
// http.Handler. The payload is translated and written as JSON, errors are
// rendered with their status:
//
//	r.Get("/users/{id}", middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
//	    return nil, lingo.ErrNotFound("#{user_not_found}")
//	}))
//
// # Request ID and Recover
//
// RequestID assigns an ID to each request and RequestIDExtractor adds it
// to log entries. Recover turns panics into a 500 JSON error body.
package middlewares
