package internal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
)

func constant(value string) internal.Middleware {
	return func(context.Context, string, string, internal.Next) (string, bool, error) {
		return value, true, nil
	}
}

func decline(calls *atomic.Int32) internal.Middleware {
	return func(context.Context, string, string, internal.Next) (string, bool, error) {
		calls.Add(1)
		return "", false, nil
	}
}

func newChainService(t *testing.T, mws ...internal.Middleware) *internal.Service {
	t.Helper()
	svc, err := internal.New(
		internal.WithLocales("en"),
		internal.WithMiddleware(mws...),
	)
	require.NoError(t, err)
	return svc
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first value wins", func(t *testing.T) {
		t.Parallel()
		svc := newChainService(t, constant("first"), constant("second"))
		got, err := svc.TranslateString(ctx, "en", "#{k}")
		require.NoError(t, err)
		require.Equal(t, "first", got)
	})

	t.Run("decline without next advances", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		svc := newChainService(t, decline(&calls), constant("second"))
		got, err := svc.TranslateString(ctx, "en", "#{k}")
		require.NoError(t, err)
		require.Equal(t, "second", got)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("explicit next passes through", func(t *testing.T) {
		t.Parallel()
		wrap := func(_ context.Context, _, _ string, next internal.Next) (string, bool, error) {
			v, ok, err := next()
			if err != nil || !ok {
				return v, ok, err
			}
			return "[" + v + "]", true, nil
		}
		svc := newChainService(t, wrap, constant("inner"))
		got, err := svc.TranslateString(ctx, "en", "#{k}")
		require.NoError(t, err)
		require.Equal(t, "[inner]", got)
	})

	t.Run("miss after next does not rerun the rest", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		passthrough := func(_ context.Context, _, _ string, next internal.Next) (string, bool, error) {
			_, _, _ = next()
			return "", false, nil
		}
		svc := newChainService(t, passthrough, decline(&calls))
		got, err := svc.TranslateString(ctx, "en", "#{k}")
		require.NoError(t, err)
		require.Equal(t, "#{k}", got)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("soft error is skipped", func(t *testing.T) {
		t.Parallel()
		failing := func(context.Context, string, string, internal.Next) (string, bool, error) {
			return "", false, errors.New("backend down")
		}
		svc := newChainService(t, failing, constant("fallback"))
		got, err := svc.TranslateString(ctx, "en", "#{k}")
		require.NoError(t, err)
		require.Equal(t, "fallback", got)
	})

	t.Run("hard failure aborts", func(t *testing.T) {
		t.Parallel()
		teapot := internal.NewHTTPError(http.StatusTeapot, "short and stout")
		var calls atomic.Int32
		failing := func(context.Context, string, string, internal.Next) (string, bool, error) {
			return "", false, teapot
		}
		svc := newChainService(t, failing, decline(&calls))
		_, err := svc.TranslateString(ctx, "en", "#{k}")
		require.ErrorIs(t, err, teapot)
		require.Equal(t, http.StatusTeapot, internal.AsHTTPError(err).StatusCode())
		require.Zero(t, calls.Load())
	})

	t.Run("wrapped hard failure aborts", func(t *testing.T) {
		t.Parallel()
		teapot := internal.NewHTTPError(http.StatusTeapot, "short and stout")
		failing := func(context.Context, string, string, internal.Next) (string, bool, error) {
			return "", false, fmt.Errorf("lookup: %w", teapot)
		}
		svc := newChainService(t, failing, constant("never"))
		_, err := svc.TranslateString(ctx, "en", "#{k}")
		require.ErrorIs(t, err, teapot)
	})

	t.Run("empty value is a hit", func(t *testing.T) {
		t.Parallel()
		svc := newChainService(t, constant(""), constant("never"))
		got, err := svc.TranslateString(ctx, "en", "There is nothing: #{k}")
		require.NoError(t, err)
		require.Equal(t, "There is nothing: ", got)
	})
}

func TestService_MiddlewareRegistration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newChainService(t)

	got, err := svc.TranslateString(ctx, "en", "#{k}")
	require.NoError(t, err)
	require.Equal(t, "#{k}", got)

	back := svc.Use(constant("back"))
	got, err = svc.TranslateString(ctx, "en", "#{k}")
	require.NoError(t, err)
	require.Equal(t, "back", got)

	front := svc.UseFirst(constant("front"))
	require.Equal(t, 2, svc.Middlewares())
	got, err = svc.TranslateString(ctx, "en", "#{k}")
	require.NoError(t, err)
	require.Equal(t, "front", got)

	require.True(t, svc.Remove(front))
	require.False(t, svc.Remove(front))
	got, err = svc.TranslateString(ctx, "en", "#{k}")
	require.NoError(t, err)
	require.Equal(t, "back", got)

	require.True(t, svc.Remove(back))
	require.Zero(t, svc.Middlewares())
	require.Zero(t, svc.Use(nil))
}

func TestDispatch_LocalesOuterMiddlewaresInner(t *testing.T) {
	t.Parallel()

	var order []string
	record := func(_ context.Context, locale, _ string, _ internal.Next) (string, bool, error) {
		order = append(order, "a:"+locale)
		return "", false, nil
	}
	record2 := func(_ context.Context, locale, _ string, _ internal.Next) (string, bool, error) {
		order = append(order, "b:"+locale)
		return "", false, nil
	}

	svc, err := internal.New(
		internal.WithLocales("en", "zh", "zh-Hans"),
		internal.WithMiddleware(record, record2),
	)
	require.NoError(t, err)

	got, err := svc.TranslateString(context.Background(), "zh-Hans-CN", "#{k}")
	require.NoError(t, err)
	require.Equal(t, "#{k}", got)
	require.Equal(t, []string{"a:zh-Hans", "b:zh-Hans", "a:zh", "b:zh", "a:en", "b:en"}, order)
}
