// Package cache keeps lookup results of a slow catalog.Store, such as
// catalog.Postgres, in memory or in Redis:
//
//	entries := cache.NewMemory(cache.WithMaxEntries(50_000))
//	defer entries.Close()
//
//	cached, err := cache.Wrap(catalog.NewPostgres(pool), entries,
//	    cache.WithTTL(30*time.Minute),
//	    cache.WithMissTTL(time.Minute),
//	)
//	svc, err := lingo.New(lingo.WithMiddleware(cached.Middleware(lingo.MatchHierarchy)))
//
// Misses are cached too, so a key absent from one locale does not hit the
// database on every fallback. Cached implements catalog.Reloadable; a
// catalog.Reloader running Invalidate on a schedule bounds staleness.
package cache
