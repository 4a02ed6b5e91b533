package missing

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
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/dmitrymomot/lingo/pkg/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates the translation_misses table and the river job tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: log})
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return catalog.MigrateFS(ctx, pool, sub, "lingo_missing_migrations", log)
}

// Report is the stored state of one missing key.
type Report struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Locale    string
	Key       string
	LastPath  string
	Hits      int64
}

// Postgres is a Sink accumulating hit counts per locale and key.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Sink over pool. Run Migrate first.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const upsertMiss = `
INSERT INTO translation_misses (locale, key, last_path, hits, first_seen, last_seen)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (locale, key) DO UPDATE SET
    hits      = translation_misses.hits + EXCLUDED.hits,
    last_path = CASE WHEN EXCLUDED.last_path = '' THEN translation_misses.last_path ELSE EXCLUDED.last_path END,
    last_seen = GREATEST(translation_misses.last_seen, EXCLUDED.last_seen)`

// Record implements Sink.
func (p *Postgres) Record(ctx context.Context, misses []Miss) error {
	if len(misses) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range misses {
		batch.Queue(upsertMiss, m.Locale, m.Key, m.Path, max(m.Count, 1), m.Seen)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("missing: record: %w", err)
	}
	return nil
}

// Top returns the most frequently missed keys, at most limit of them.
func (p *Postgres) Top(ctx context.Context, limit int) ([]Report, error) {
	rows, err := p.pool.Query(ctx, `
SELECT locale, key, last_path, hits, first_seen, last_seen
FROM translation_misses
ORDER BY hits DESC, locale, key
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("missing: top: %w", err)
	}
	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Report, error) {
		var r Report
		err := row.Scan(&r.Locale, &r.Key, &r.LastPath, &r.Hits, &r.FirstSeen, &r.LastSeen)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("missing: top: %w", err)
	}
	return reports, nil
}

// Forget removes the record of a key once it has been translated.
func (p *Postgres) Forget(ctx context.Context, locale, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM translation_misses WHERE locale = $1 AND key = $2`, locale, key); err != nil {
		return fmt.Errorf("missing: forget: %w", err)
	}
	return nil
}
