package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/middlewares"
)

type created struct {
	Message string `json:"message"`
}

func (created) HTTPStatus() int { return http.StatusCreated }

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("translates payload", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return map[string]any{"message": "#{ok}"}, nil
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"成功"}`, rec.Body.String())
	})

	t.Run("payload status", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return created{Message: "#{ok}"}, nil
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodPost, "/", "en"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"success"}`, rec.Body.String())
	})

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return nil, nil
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodDelete, "/", "en"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("http error is translated", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-1" }))(
			middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
				return nil, internal.ErrNotFound("#{not_found}", internal.WithErrorCode("user_missing"))
			}),
		)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "zh-Hans"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "未找到", body["message"])
		assert.Equal(t, "Not Found", body["error"])
		assert.Equal(t, "user_missing", body["errorCode"])
		assert.Equal(t, "req-1", body["requestId"])
		assert.EqualValues(t, http.StatusNotFound, body["statusCode"])
	})

	t.Run("custom error response", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return nil, internal.ErrBadRequest("", internal.WithResponse(map[string]string{"detail": "#{bad}"}))
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "en"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail":"bad request"}`, rec.Body.String())
	})

	t.Run("hard failure during translation", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		svc.UseFirst(failOn("secret", internal.ErrForbidden("#{bad}")))
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return []string{"#{ok}", "#{secret}"}, nil
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "en"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "bad request", decodeBody(t, rec)["message"])
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return nil, errors.New("database is down")
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "en"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Internal Server Error", body["message"])
		assert.NotContains(t, rec.Body.String(), "database")
	})

	t.Run("cancelled request writes nothing", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		h := middlewares.Handle(svc, func(w http.ResponseWriter, r *http.Request) (any, error) {
			return nil, r.Context().Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(http.MethodGet, "/", "en").WithContext(ctx))
		assert.Empty(t, rec.Body.String())
	})
}
