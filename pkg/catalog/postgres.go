package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/lingo/internal"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	ConnectionString string `env:"DATABASE_URL,required"`
	MigrationsTable  string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"lingo_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Attempt i+1 waits (i+1)*RetryInterval.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}

// Connect opens a PostgreSQL pool, retrying with linear backoff until the
// database answers a ping.
func Connect(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToOpenDBConnection
}

// Migrate creates the translations table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return MigrateFS(ctx, pool, sub, table, log)
}

// MigrateFS applies the goose migrations found at the root of fsys,
// recording versions in table.
func MigrateFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, log *slog.Logger) error {
	// The sql.DB shares the pool's connections and must not be closed.
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	goose.SetLogger(&gooseLogger{log})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}

// Postgres stores translations in the translations table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a store over pool. Run Migrate first.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, locale, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM translations WHERE locale = $1 AND key = $2`,
		locale, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("catalog: get %s/%s: %w", locale, key, err)
	}
	return value, true, nil
}

// Locales implements Store.
func (p *Postgres) Locales(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT DISTINCT locale FROM translations ORDER BY locale`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list locales: %w", err)
	}
	locales, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("catalog: list locales: %w", err)
	}
	return locales, nil
}

// Load implements Source.
func (p *Postgres) Load(ctx context.Context) (internal.Dictionary, error) {
	rows, err := p.pool.Query(ctx, `SELECT locale, key, value FROM translations`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load translations: %w", err)
	}
	defer rows.Close()

	dict := internal.Dictionary{}
	for rows.Next() {
		var locale, key, value string
		if err := rows.Scan(&locale, &key, &value); err != nil {
			return nil, fmt.Errorf("catalog: load translations: %w", err)
		}
		add(dict, locale, "", map[string]string{key: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load translations: %w", err)
	}
	return dict, nil
}

const upsertTranslation = `
INSERT INTO translations (locale, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (locale, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// Put inserts or replaces one translation.
func (p *Postgres) Put(ctx context.Context, locale, key, value string) error {
	if err := checkEntry(locale, key); err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, upsertTranslation, locale, key, value); err != nil {
		return fmt.Errorf("catalog: put %s/%s: %w", locale, key, err)
	}
	return nil
}

// Import upserts every entry of dict in one transaction.
func (p *Postgres) Import(ctx context.Context, dict internal.Dictionary) error {
	batch := &pgx.Batch{}
	for locale, entries := range dict {
		for key, value := range entries {
			if err := checkEntry(locale, key); err != nil {
				return err
			}
			batch.Queue(upsertTranslation, locale, key, value)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	return withTx(ctx, p.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("catalog: import: %w", err)
		}
		return nil
	})
}

// Delete removes one translation. Deleting a missing entry is not an error.
func (p *Postgres) Delete(ctx context.Context, locale, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM translations WHERE locale = $1 AND key = $2`, locale, key); err != nil {
		return fmt.Errorf("catalog: delete %s/%s: %w", locale, key, err)
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error or panic.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func checkEntry(locale, key string) error {
	if locale == "" {
		return ErrEmptyLocale
	}
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
