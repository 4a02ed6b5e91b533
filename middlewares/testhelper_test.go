package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
)

var dictionary = internal.Dictionary{
	"en": {
		"ok":        "success",
		"not_found": "not found",
		"bad":       "bad request",
	},
	"zh-Hans": {
		"ok":        "成功",
		"not_found": "未找到",
		"bad":       "错误请求",
	},
}

func newService(t *testing.T, opts ...internal.Option) *internal.Service {
	t.Helper()

	base := []internal.Option{
		internal.WithLocales("en", "zh-Hans"),
		internal.WithResolver(internal.HeaderResolver("X-Lang")),
		internal.WithMiddleware(internal.Lookup(dictionary, internal.WithMatchType(internal.MatchHierarchy))),
	}
	svc, err := internal.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

// failOn returns a middleware that aborts with err for the given key.
func failOn(key string, err error) internal.Middleware {
	return func(ctx context.Context, locale, k string, next internal.Next) (string, bool, error) {
		if k == key {
			return "", false, err
		}
		return next(ctx)
	}
}

func newRequest(method, target, lang string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if lang != "" {
		req.Header.Set("X-Lang", lang)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}
