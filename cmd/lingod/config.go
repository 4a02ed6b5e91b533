package main

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/lingo/pkg/logger"
)

const (
	backendNone     = ""
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendRedis    = "redis"
	backendLog      = "log"
	backendOff      = "off"
)

// config is parsed from the environment; .env is loaded first when present.
// Postgres, Redis and S3 settings are parsed only when a backend needs them.
type config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Locales         []string      `env:"LOCALES" envDefault:"en,de,zh-Hans" envSeparator:","`
	DefaultLocale   string        `env:"DEFAULT_LOCALE"`
	TranslationsDir string        `env:"TRANSLATIONS_DIR"`
	ReloadSchedule  string        `env:"RELOAD_SCHEDULE" envDefault:"@every 5m"`
	Store           string        `env:"TRANSLATIONS_STORE"`
	S3              bool          `env:"TRANSLATIONS_S3" envDefault:"false"`
	Cache           string        `env:"CACHE" envDefault:"memory"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`
	RecordMissing   string        `env:"RECORD_MISSING" envDefault:"log"`
	CookieSecret    string        `env:"LOCALE_COOKIE_SECRET"`
	CookieSecure    bool          `env:"LOCALE_COOKIE_SECURE" envDefault:"false"`
	MaxBody         int64         `env:"MAX_TRANSLATE_BODY" envDefault:"4194304"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Log             logger.Config
}

func (c config) validate() error {
	switch c.Store {
	case backendNone, backendPostgres, backendRedis:
	default:
		return fmt.Errorf("TRANSLATIONS_STORE: unknown backend %q", c.Store)
	}
	switch c.Cache {
	case backendMemory, backendRedis:
	default:
		return fmt.Errorf("CACHE: unknown backend %q", c.Cache)
	}
	switch c.RecordMissing {
	case backendOff, backendLog, backendPostgres:
	default:
		return fmt.Errorf("RECORD_MISSING: unknown backend %q", c.RecordMissing)
	}
	if len(c.Locales) == 0 {
		return fmt.Errorf("LOCALES: at least one locale is required")
	}
	return nil
}

func (c config) usesPostgres() bool {
	return c.Store == backendPostgres || c.RecordMissing == backendPostgres
}

func (c config) usesRedis() bool {
	return c.Store == backendRedis || (c.Store != backendNone && c.Cache == backendRedis)
}
