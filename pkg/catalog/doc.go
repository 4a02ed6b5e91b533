// Package catalog supplies dictionaries to a lingo Service.
//
// A Source loads a whole dictionary: FS reads JSON, YAML or TOML files,
// S3 reads the same layout from a bucket, Postgres and Redis read their
// stored entries. A Catalog keeps a loaded dictionary in memory and can be
// refreshed on a cron schedule with a Reloader:
//
//	cat, err := catalog.New(ctx, catalog.Merge(catalog.FS(os.DirFS("locales")), pg))
//	if err != nil {
//	    return err
//	}
//	svc, err := lingo.New(
//	    lingo.WithLocales("en", "de"),
//	    lingo.WithMiddleware(cat.Middleware(lingo.MatchHierarchy)),
//	)
//
//	reloader, _ := catalog.NewReloader(cat, "@every 5m")
//	go reloader.Run(ctx)
//
// A Store resolves single keys without loading everything; Postgres, Redis,
// Bundle and Catalog are stores, and Middleware turns any store into a
// translation middleware.
package catalog
