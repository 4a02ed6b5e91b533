//go:build integration

package missing_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/pkg/catalog"
	"github.com/dmitrymomot/lingo/pkg/logger"
	"github.com/dmitrymomot/lingo/pkg/missing"
)

func TestPostgresIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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

	require.NoError(t, missing.Migrate(ctx, pool, logger.NewNope()))
	_, err = pool.Exec(ctx, `DELETE FROM translation_misses`)
	require.NoError(t, err)

	sink := missing.NewPostgres(pool)

	t.Run("record accumulates hits", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, sink.Record(ctx, []missing.Miss{
			{Locale: "de", Key: "title", Path: "/a", Count: 2, Seen: now},
			{Locale: "fr", Key: "title", Count: 1, Seen: now},
		}))
		require.NoError(t, sink.Record(ctx, []missing.Miss{
			{Locale: "de", Key: "title", Count: 3, Seen: now.Add(time.Second)},
		}))

		top, err := sink.Top(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "de", top[0].Locale)
		assert.EqualValues(t, 5, top[0].Hits)
		assert.Equal(t, "/a", top[0].LastPath)
	})

	t.Run("forget", func(t *testing.T) {
		require.NoError(t, sink.Forget(ctx, "fr", "title"))

		top, err := sink.Top(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "de", top[0].Locale)
	})

	t.Run("queue stores batches", func(t *testing.T) {
		q, err := missing.NewQueue(pool, sink, missing.WithQueueLogger(logger.NewNope()))
		require.NoError(t, err)
		require.NoError(t, q.Start(ctx))
		defer func() { _ = q.Stop(context.Background()) }()

		require.NoError(t, q.Enqueue(ctx, []missing.Miss{
			{Locale: "es", Key: "queued", Count: 1, Seen: time.Now().UTC()},
		}))

		require.Eventually(t, func() bool {
			top, err := sink.Top(ctx, 10)
			if err != nil {
				return false
			}
			for _, r := range top {
				if r.Locale == "es" && r.Key == "queued" {
					return true
				}
			}
			return false
		}, 20*time.Second, 100*time.Millisecond)
	})
}
