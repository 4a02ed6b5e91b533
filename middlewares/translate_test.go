package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/middlewares"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	t.Run("rewrites json body", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(jsonHandler(http.StatusCreated, `{"message":"#{ok}","count":12345678901234567890,"tags":["#{bad}"]}`))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"成功","count":12345678901234567890,"tags":["错误请求"]}`, rec.Body.String())
		assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))
	})

	t.Run("untouched body keeps its bytes", func(t *testing.T) {
		t.Parallel()

		body := `{"z":"a < b && c","a":[1,2],"m":"#{missing}"}`
		svc := newService(t)
		h := middlewares.Translate(svc)(jsonHandler(http.StatusOK, body))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.Equal(t, body, rec.Body.String())
	})

	t.Run("rewritten body is not html escaped", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(jsonHandler(http.StatusOK, `{"message":"#{ok}","note":"<b>&</b>"}`))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.JSONEq(t, `{"message":"成功","note":"<b>&</b>"}`, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"<b>&</b>"`)
	})

	t.Run("uses locale stored by I18n", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.I18n(svc, middlewares.WithI18nResolver(internal.QueryResolver("lang")))(
			middlewares.Translate(svc)(jsonHandler(http.StatusOK, `"#{ok}"`)),
		)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/?lang=zh-Hans", "en"))
		assert.JSONEq(t, `"成功"`, rec.Body.String())
	})

	t.Run("non json passes through", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("#{ok}"))
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.Equal(t, "#{ok}", rec.Body.String())
	})

	t.Run("invalid json is written unchanged", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(jsonHandler(http.StatusOK, `{"message":"#{ok}"`))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.Equal(t, `{"message":"#{ok}"`, rec.Body.String())
	})

	t.Run("body over limit streams unchanged", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc, middlewares.WithTranslateMaxBody(4))(jsonHandler(http.StatusOK, `{"message":"#{ok}"}`))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.Equal(t, `{"message":"#{ok}"}`, rec.Body.String())
	})

	t.Run("flush stops capturing", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`"#{ok}"`))
			w.(http.Flusher).Flush()
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))
		assert.Equal(t, `"#{ok}"`, rec.Body.String())
		assert.True(t, rec.Flushed)
	})

	t.Run("http error replaces body", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		svc.UseFirst(failOn("secret", internal.ErrForbidden("#{bad}")))
		h := middlewares.Translate(svc)(jsonHandler(http.StatusOK, `{"message":"#{secret}"}`))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "错误请求", body["message"])
		assert.Equal(t, "Forbidden", body["error"])
	})

	t.Run("head request passes through", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Translate(svc)(jsonHandler(http.StatusOK, ""))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodHead, "/", "zh-Hans"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
