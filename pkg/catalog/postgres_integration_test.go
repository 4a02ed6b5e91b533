//go:build integration

package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/catalog"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

func TestPostgresIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := catalog.Connect(ctx, catalog.PostgresConfig{
		ConnectionString: url,
		RetryAttempts:    1,
		RetryInterval:    time.Second,
		MaxOpenConns:     4,
		MinConns:         1,
	})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, catalog.Migrate(ctx, pool, "lingo_migrations", logger.NewNope()))
	_, err = pool.Exec(ctx, `DELETE FROM translations`)
	require.NoError(t, err)

	store := catalog.NewPostgres(pool)
	require.NoError(t, store.Import(ctx, internal.Dictionary{
		"en": {"ok": "success", "empty": ""},
		"de": {"ok": "gut"},
	}))
	require.NoError(t, store.Put(ctx, "de", "ok", "sehr gut"))
	require.ErrorIs(t, store.Put(ctx, "", "ok", "x"), catalog.ErrEmptyLocale)

	text, ok, err := store.Get(ctx, "de", "ok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sehr gut", text)

	text, ok, err = store.Get(ctx, "en", "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, text)

	_, ok, err = store.Get(ctx, "de", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	locales, err := store.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en"}, locales)

	dict, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, internal.Dictionary{"en": {"ok": "success", "empty": ""}, "de": {"ok": "sehr gut"}}, dict)

	require.NoError(t, store.Delete(ctx, "de", "ok"))
	_, ok, err = store.Get(ctx, "de", "ok")
	require.NoError(t, err)
	assert.False(t, ok)
}
