package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/lingo"
	"github.com/dmitrymomot/lingo/pkg/cache"
	"github.com/dmitrymomot/lingo/pkg/catalog"
	"github.com/dmitrymomot/lingo/pkg/cookie"
	"github.com/dmitrymomot/lingo/pkg/health"
	"github.com/dmitrymomot/lingo/pkg/missing"
	"github.com/dmitrymomot/lingo/pkg/sanitizer"
)

//go:embed locales
var bundled embed.FS

// editableStore is a translation store the admin endpoints can write to.
type editableStore interface {
	catalog.Store
	Put(ctx context.Context, locale, key, value string) error
	Delete(ctx context.Context, locale, key string) error
}

type app struct {
	cfg config
	log *slog.Logger
	svc *lingo.Service

	prefs  *cookie.Preference
	files  *catalog.Catalog
	store  editableStore
	cached *cache.Cached
	misses *missing.Postgres
	checks health.Checks

	redisPrefix string

	// background runs until its context is done.
	background []func(ctx context.Context) error
	// hooks release resources after the server stopped, in reverse order.
	hooks []func(ctx context.Context) error
}

func newApp(ctx context.Context, cfg config, log *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, log: log, checks: health.Checks{}}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.shutdown(context.Background()))
		}
	}()

	var (
		pool *pgxpool.Pool
		rdb  redis.UniversalClient
	)
	if cfg.usesPostgres() {
		if pool, err = a.openPostgres(ctx); err != nil {
			return nil, err
		}
	}
	if cfg.usesRedis() {
		if rdb, err = a.openRedis(ctx); err != nil {
			return nil, err
		}
	}

	source, err := a.source()
	if err != nil {
		return nil, err
	}
	if a.files, err = catalog.New(ctx, source, catalog.WithLogger(log)); err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	a.checks["translations"] = func(ctx context.Context) error {
		if len(a.files.Dictionary()) == 0 {
			return errors.New("no translations loaded")
		}
		return nil
	}

	var chain []lingo.Middleware
	if cfg.Store != backendNone {
		mw, err := a.storeMiddleware(ctx, pool, rdb)
		if err != nil {
			return nil, err
		}
		chain = append(chain, mw)
	}
	chain = append(chain, a.files.Middleware(lingo.MatchHierarchy))

	a.prefs = cookie.New(
		cookie.WithSecret(cfg.CookieSecret),
		cookie.WithSecure(cfg.CookieSecure),
	)

	opts := []lingo.Option{
		lingo.WithLocales(cfg.Locales...),
		lingo.WithResolver(lingo.FirstOf(
			lingo.QueryResolver("lang"),
			a.prefs.Resolver(),
			lingo.AcceptLanguageResolver(cfg.Locales...),
		)),
		lingo.WithLogger(log),
		lingo.WithMiddleware(chain...),
	}
	if cfg.DefaultLocale != "" {
		opts = append(opts, lingo.WithDefaultLocale(cfg.DefaultLocale))
	}
	onMissing, err := a.missingHandler(ctx, pool)
	if err != nil {
		return nil, err
	}
	if onMissing != nil {
		opts = append(opts, lingo.WithMissingHandler(onMissing))
	}

	if a.svc, err = lingo.New(opts...); err != nil {
		return nil, fmt.Errorf("create translator: %w", err)
	}

	reloader, err := catalog.NewReloader(a, cfg.ReloadSchedule, catalog.WithReloaderLogger(log))
	if err != nil {
		return nil, err
	}
	a.background = append(a.background, reloader.Run)

	return a, nil
}

func (a *app) openPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	var pgCfg catalog.PostgresConfig
	if err := env.Parse(&pgCfg); err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := catalog.Connect(ctx, pgCfg)
	if err != nil {
		return nil, err
	}
	a.hooks = append(a.hooks, func(context.Context) error {
		pool.Close()
		return nil
	})
	a.checks["postgres"] = pool.Ping

	if err := catalog.Migrate(ctx, pool, pgCfg.MigrationsTable, a.log); err != nil {
		return nil, err
	}
	return pool, nil
}

func (a *app) openRedis(ctx context.Context) (redis.UniversalClient, error) {
	var rCfg catalog.RedisConfig
	if err := env.Parse(&rCfg); err != nil {
		return nil, fmt.Errorf("parse redis config: %w", err)
	}
	rdb, err := catalog.OpenRedis(ctx, rCfg)
	if err != nil {
		return nil, err
	}
	a.redisPrefix = rCfg.Prefix
	a.hooks = append(a.hooks, func(context.Context) error {
		return rdb.Close()
	})
	a.checks["redis"] = func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
	return rdb, nil
}

// source combines the bundled or configured translation files with an
// optional S3 prefix; S3 entries win.
func (a *app) source() (catalog.Source, error) {
	var files fs.FS
	if a.cfg.TranslationsDir != "" {
		files = os.DirFS(a.cfg.TranslationsDir)
	} else {
		sub, err := fs.Sub(bundled, "locales")
		if err != nil {
			return nil, err
		}
		files = sub
	}
	src := catalog.FS(files)

	if !a.cfg.S3 {
		return src, nil
	}
	var s3Cfg catalog.S3Config
	if err := env.Parse(&s3Cfg); err != nil {
		return nil, fmt.Errorf("parse s3 config: %w", err)
	}
	remote, err := catalog.NewS3(s3Cfg)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(src, remote), nil
}

// storeMiddleware serves editable translations from Postgres or Redis
// through a cache. Edited texts are sanitized.
func (a *app) storeMiddleware(ctx context.Context, pool *pgxpool.Pool, rdb redis.UniversalClient) (lingo.Middleware, error) {
	switch a.cfg.Store {
	case backendPostgres:
		a.store = catalog.NewPostgres(pool)
	case backendRedis:
		a.store = catalog.NewRedis(rdb, a.redisPrefix)
	}

	var entries cache.Store
	if a.cfg.Cache == backendRedis {
		entries = cache.NewRedis(rdb, a.redisPrefix+":cache")
	} else {
		entries = cache.NewMemory(cache.WithMaxEntries(a.cfg.CacheMaxEntries))
	}
	a.hooks = append(a.hooks, func(context.Context) error {
		return entries.Close()
	})

	cached, err := cache.Wrap(a.store, entries,
		cache.WithTTL(a.cfg.CacheTTL),
		cache.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	if err := cached.Invalidate(ctx); err != nil {
		a.log.WarnContext(ctx, "failed to purge translation cache", slog.Any("error", err))
	}
	a.cached = cached

	return sanitizer.Middleware(cached.Middleware(lingo.MatchHierarchy), sanitizer.Formatting()), nil
}

// missingHandler returns the hook recording unresolved placeholders, or
// nil when recording is off.
func (a *app) missingHandler(ctx context.Context, pool *pgxpool.Pool) (lingo.MissingHandler, error) {
	var enq missing.Enqueuer
	switch a.cfg.RecordMissing {
	case backendOff:
		return nil, nil
	case backendLog:
		enq = missing.Direct(logSink{log: a.log})
	case backendPostgres:
		if err := missing.Migrate(ctx, pool, a.log); err != nil {
			return nil, err
		}
		a.misses = missing.NewPostgres(pool)
		queue, err := missing.NewQueue(pool, a.misses, missing.WithQueueLogger(a.log))
		if err != nil {
			return nil, err
		}
		if err := queue.Start(ctx); err != nil {
			return nil, err
		}
		a.hooks = append(a.hooks, queue.Stop)
		enq = queue
	}

	collector, err := missing.NewCollector(enq, missing.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	a.background = append(a.background, collector.Run)
	return collector.Handler(), nil
}

// Reload refreshes the translation files and drops cached store entries.
func (a *app) Reload(ctx context.Context) error {
	var errs []error
	if err := a.files.Reload(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.cached != nil {
		if err := a.cached.Reload(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// startWorkers runs the background loops and closes the returned channel
// once all of them returned.
func (a *app) startWorkers(ctx context.Context) <-chan struct{} {
	var wg sync.WaitGroup
	for _, run := range a.background {
		wg.Go(func() {
			if err := run(ctx); err != nil {
				a.log.Error("background worker stopped", slog.Any("error", err))
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func (a *app) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		if err := a.hooks[i](ctx); err != nil {
			a.log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	a.hooks = nil
	return errors.Join(errs...)
}

// logSink writes misses to the log when no database is configured.
type logSink struct {
	log *slog.Logger
}

func (s logSink) Record(ctx context.Context, misses []missing.Miss) error {
	for _, m := range misses {
		s.log.WarnContext(ctx, "missing translation",
			slog.String("locale", m.Locale),
			slog.String("key", m.Key),
			slog.String("path", m.Path),
			slog.Int("count", m.Count),
		)
	}
	return nil
}
