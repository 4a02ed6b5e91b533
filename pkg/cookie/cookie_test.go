package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/pkg/cookie"
)

const secret = "0123456789abcdef0123456789abcdef"

// roundTrip copies the cookies set on rec into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestPreference(t *testing.T) {
	t.Parallel()

	t.Run("unsigned", func(t *testing.T) {
		t.Parallel()

		p := cookie.New(cookie.WithMaxAge(time.Hour))
		rec := httptest.NewRecorder()
		require.NoError(t, p.Set(rec, "zh-Hans"))

		c := rec.Result().Cookies()[0]
		assert.Equal(t, cookie.DefaultName, c.Name)
		assert.Equal(t, "zh-Hans", c.Value)
		assert.Equal(t, 3600, c.MaxAge)
		assert.True(t, c.HttpOnly)

		got, err := p.Get(roundTrip(rec))
		require.NoError(t, err)
		assert.Equal(t, "zh-Hans", got)
	})

	t.Run("signed", func(t *testing.T) {
		t.Parallel()

		p := cookie.New(cookie.WithSecret(secret), cookie.WithName("locale"))
		rec := httptest.NewRecorder()
		require.NoError(t, p.Set(rec, "de"))
		assert.True(t, strings.HasPrefix(rec.Result().Cookies()[0].Value, "de."))

		got, err := p.Get(roundTrip(rec))
		require.NoError(t, err)
		assert.Equal(t, "de", got)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		p := cookie.New(cookie.WithSecret(secret))
		rec := httptest.NewRecorder()
		require.NoError(t, p.Set(rec, "de"))

		c := rec.Result().Cookies()[0]
		c.Value = "en" + strings.TrimPrefix(c.Value, "de")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)

		_, err := p.Get(req)
		require.ErrorIs(t, err, cookie.ErrBadSig)

		locale, err := p.Resolver()(req)
		require.NoError(t, err)
		assert.Empty(t, locale)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		p := cookie.New()
		_, err := p.Get(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, cookie.ErrNotFound)
	})

	t.Run("invalid locale", func(t *testing.T) {
		t.Parallel()

		p := cookie.New()
		require.ErrorIs(t, p.Set(httptest.NewRecorder(), "not a locale"), cookie.ErrBadLocale)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		p := cookie.New()
		rec := httptest.NewRecorder()
		p.Clear(rec)
		c := rec.Result().Cookies()[0]
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	})

	t.Run("short secret leaves cookie unsigned", func(t *testing.T) {
		t.Parallel()

		p := cookie.New(cookie.WithSecret("short"))
		rec := httptest.NewRecorder()
		require.NoError(t, p.Set(rec, "en"))
		assert.Equal(t, "en", rec.Result().Cookies()[0].Value)
	})
}
