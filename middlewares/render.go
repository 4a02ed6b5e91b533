package middlewares

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/lingo/internal"
)

// StatusCoder is implemented by payloads that carry their own HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// statusOf picks the status for a successful payload.
func statusOf(payload any) int {
	if sc, ok := payload.(StatusCoder); ok {
		if code := sc.HTTPStatus(); code > 0 {
			return code
		}
	}
	return http.StatusOK
}

// renderError translates the payload of httpErr into locale and writes it
// with the error's status. A failure while translating the payload falls
// back to the untranslated payload.
func renderError(w http.ResponseWriter, r *http.Request, svc *internal.Service, locale string, httpErr *internal.HTTPError) error {
	if httpErr.RequestID == "" {
		if id := GetRequestID(r.Context()); id != "" {
			httpErr = httpErr.WithPayload(httpErr.Response)
			httpErr.RequestID = id
		}
	}
	payload := httpErr.Payload()
	if svc != nil {
		if translated, err := svc.Translate(internal.WithRequest(r.Context(), r), locale, payload); err == nil {
			payload = translated
		}
	}
	return writeJSON(w, httpErr.StatusCode(), payload)
}
