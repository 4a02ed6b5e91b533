package catalog_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/catalog"
)

func TestBundle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newBundle := func(t *testing.T) *catalog.Bundle {
		t.Helper()

		b, err := catalog.NewBundle("en")
		require.NoError(t, err)

		fsys := fstest.MapFS{
			"active.en.toml": {Data: []byte("ok = \"success\"\nonly_en = \"english only\"\n")},
			"active.de.yaml": {Data: []byte("ok: gut\n")},
		}
		require.NoError(t, b.LoadGlob(fsys, "active.*"))
		require.NoError(t, b.Add("zh-Hans", map[string]string{"ok": "成功"}))
		return b
	}

	t.Run("locales", func(t *testing.T) {
		t.Parallel()

		locales, err := newBundle(t).Locales(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"en", "de", "zh-Hans"}, locales)
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		b := newBundle(t)

		text, ok, err := b.Get(ctx, "de", "ok")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "gut", text)

		_, ok, err = b.Get(ctx, "de", "only_en")
		require.NoError(t, err)
		assert.False(t, ok, "default language must not leak into other locales")

		_, ok, err = b.Get(ctx, "fr", "ok")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("as middleware", func(t *testing.T) {
		t.Parallel()

		svc, err := internal.New(
			internal.WithLocales("en", "de", "zh-Hans"),
			internal.WithMiddleware(catalog.Middleware(newBundle(t), internal.MatchHierarchy)),
		)
		require.NoError(t, err)

		got, err := svc.TranslateString(ctx, "de", "#{ok} / #{only_en}")
		require.NoError(t, err)
		assert.Equal(t, "gut / english only", got)

		got, err = svc.TranslateString(ctx, "zh-Hans", "#{ok}")
		require.NoError(t, err)
		assert.Equal(t, "成功", got)
	})

	t.Run("invalid default locale", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.NewBundle("not a tag!")
		require.Error(t, err)
	})
}
