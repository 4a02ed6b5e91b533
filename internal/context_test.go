package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
)

func TestLocaleContext(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	lc := internal.NewLocaleContext(svc, "zh-Hans-CN")
	require.Equal(t, "zh-Hans", lc.Locale)
	require.Same(t, svc, lc.Service())

	out, err := lc.Translate(ctx, []string{"#{ok}", "#{hello}"})
	require.NoError(t, err)
	require.Equal(t, []string{"成功", "你好"}, out)

	v, ok, err := lc.Lookup(ctx, "thingOnlyInEn")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "This key is only in en locale", v)

	stored := internal.WithLocaleContext(ctx, lc)
	got, ok := internal.LocaleContextFrom(stored)
	require.True(t, ok)
	require.Same(t, lc, got)
	require.Equal(t, "zh-Hans", internal.LocaleFromContext(stored))
	require.Empty(t, internal.LocaleFromContext(ctx))
}

func TestRequestFromContext(t *testing.T) {
	t.Parallel()

	_, ok := internal.RequestFromContext(context.Background())
	require.False(t, ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	got, ok := internal.RequestFromContext(internal.WithRequest(context.Background(), r))
	require.True(t, ok)
	require.Same(t, r, got)
}
