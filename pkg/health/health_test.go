package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/middlewares"
	"github.com/dmitrymomot/lingo/pkg/health"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()

		report := health.Run(context.Background(), nil)
		assert.Equal(t, health.StatusHealthy, report.Status)
		assert.Equal(t, http.StatusOK, report.HTTPStatus())
	})

	t.Run("one failing check", func(t *testing.T) {
		t.Parallel()

		report := health.Run(context.Background(), health.Checks{
			"db":    func(context.Context) error { return nil },
			"cache": func(context.Context) error { return errors.New("connection refused") },
		})
		assert.Equal(t, health.StatusUnhealthy, report.Status)
		assert.Equal(t, health.MessageUnavailable, report.Message)
		assert.Equal(t, http.StatusServiceUnavailable, report.HTTPStatus())
		assert.Equal(t, health.StatusHealthy, report.Checks["db"].Status)
		assert.Equal(t, "connection refused", report.Checks["cache"].Error)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		report := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond))
		assert.Equal(t, health.StatusUnhealthy, report.Checks["slow"].Status)
	})
}

func TestReadyTranslated(t *testing.T) {
	t.Parallel()

	svc, err := internal.New(
		internal.WithLocales("en", "de"),
		internal.WithResolver(internal.HeaderResolver("X-Lang")),
		internal.WithMiddleware(internal.Lookup(internal.Dictionary{
			"de": {"health.unavailable": "Dienst nicht verfügbar"},
		})),
	)
	require.NoError(t, err)

	h := middlewares.Handle(svc, health.Ready(health.Checks{
		"db": func(context.Context) error { return errors.New("down") },
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.Header.Set("X-Lang", "de")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dienst nicht verfügbar")
}
