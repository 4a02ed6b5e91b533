// Package missing records placeholder keys that no dictionary could
// translate, so they can be found and filled in.
//
// A Collector is installed as the Service's missing-key hook. It buffers
// misses, merges repeats and flushes them in batches to an Enqueuer. Queue
// is the durable Enqueuer: batches become river jobs whose Worker upserts
// them into the translation_misses table.
//
//	if err := missing.Migrate(ctx, pool, log); err != nil {
//	    return err
//	}
//	queue, _ := missing.NewQueue(pool, missing.NewPostgres(pool))
//	collector, _ := missing.NewCollector(queue)
//	svc, _ := lingo.New(lingo.WithMissingHandler(collector.Handler()))
//
//	go collector.Run(ctx)
//	_ = queue.Start(ctx)
package missing
