//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/pkg/cache"
)

func newRedisClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	store := cache.NewRedis(client, "lingo-cache-test-"+uuid.NewString())
	defer store.Close()

	_, ok, err := store.Get(ctx, "en:ok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "en:ok", cache.Entry{Text: "success", Found: true}, time.Minute))
	require.NoError(t, store.Set(ctx, "en:missing", cache.Entry{}, time.Minute))
	require.NoError(t, store.Set(ctx, "en:short", cache.Entry{Found: true}, 50*time.Millisecond))

	e, ok, err := store.Get(ctx, "en:ok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cache.Entry{Text: "success", Found: true}, e)

	e, ok, err = store.Get(ctx, "en:missing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, e.Found)

	time.Sleep(100 * time.Millisecond)
	_, ok, err = store.Get(ctx, "en:short")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Purge(ctx))
	_, ok, err = store.Get(ctx, "en:ok")
	require.NoError(t, err)
	assert.False(t, ok)
}
