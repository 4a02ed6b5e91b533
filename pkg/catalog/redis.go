package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/lingo/internal"
)

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL,required"`
	Prefix        string        `env:"REDIS_PREFIX" envDefault:"lingo"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
}

// OpenRedis connects to Redis, retrying with linear backoff until the
// server answers a ping. Both redis:// and rediss:// URLs are accepted.
func OpenRedis(ctx context.Context, cfg RedisConfig) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = cfg.MaxIdleTime
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.DialTimeout = cfg.DialTimeout

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrConnectionFailed
}

// Redis stores translations as one hash per locale, "{prefix}:locale:{locale}",
// plus the set "{prefix}:locales" listing them.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a store over client. An empty prefix defaults to "lingo".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "lingo"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) localesKey() string {
	return r.prefix + ":locales"
}

func (r *Redis) localeKey(locale string) string {
	return r.prefix + ":locale:" + locale
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, locale, key string) (string, bool, error) {
	value, err := r.client.HGet(ctx, r.localeKey(locale), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("catalog: get %s/%s: %w", locale, key, err)
	}
	return value, true, nil
}

// Locales implements Store.
func (r *Redis) Locales(ctx context.Context) ([]string, error) {
	locales, err := r.client.SMembers(ctx, r.localesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: list locales: %w", err)
	}
	slices.Sort(locales)
	return locales, nil
}

// Load implements Source.
func (r *Redis) Load(ctx context.Context) (internal.Dictionary, error) {
	locales, err := r.Locales(ctx)
	if err != nil {
		return nil, err
	}

	cmds := make([]*redis.MapStringStringCmd, len(locales))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, locale := range locales {
			cmds[i] = pipe.HGetAll(ctx, r.localeKey(locale))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load translations: %w", err)
	}

	dict := make(internal.Dictionary, len(locales))
	for i, locale := range locales {
		dict[locale] = cmds[i].Val()
	}
	return dict, nil
}

// Put sets one translation.
func (r *Redis) Put(ctx context.Context, locale, key, value string) error {
	return r.Import(ctx, internal.Dictionary{locale: {key: value}})
}

// Import writes every entry of dict atomically.
func (r *Redis) Import(ctx context.Context, dict internal.Dictionary) error {
	for locale, entries := range dict {
		for key := range entries {
			if err := checkEntry(locale, key); err != nil {
				return err
			}
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for locale, entries := range dict {
			if len(entries) == 0 {
				continue
			}
			pipe.SAdd(ctx, r.localesKey(), locale)
			fields := make(map[string]any, len(entries))
			for k, v := range entries {
				fields[k] = v
			}
			pipe.HSet(ctx, r.localeKey(locale), fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog: import: %w", err)
	}
	return nil
}

// Delete removes one translation.
func (r *Redis) Delete(ctx context.Context, locale, key string) error {
	if err := r.client.HDel(ctx, r.localeKey(locale), key).Err(); err != nil {
		return fmt.Errorf("catalog: delete %s/%s: %w", locale, key, err)
	}
	return nil
}
