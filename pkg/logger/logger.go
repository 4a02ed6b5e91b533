package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes the process logger. It is usually parsed from the
// environment with caarlos0/env.
type Config struct {
	Level   string       `env:"LOG_LEVEL" envDefault:"info"`
	Format  string       `env:"LOG_FORMAT" envDefault:"json"`
	Service string       `env:"LOG_SERVICE" envDefault:"lingo"`
	Sentry  SentryConfig
}

// Option configures New.
type Option func(*settings)

type settings struct {
	out        io.Writer
	extractors []ContextExtractor
}

// WithWriter sets the output of the stdout handler (os.Stdout by default).
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithExtractors adds request-scoped attributes (request id, locale) to every record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(s *settings) {
		s.extractors = append(s.extractors, extractors...)
	}
}

// New builds a logger from cfg. When a Sentry DSN is configured, records
// are also forwarded to Sentry; if Sentry cannot be initialized the
// logger falls back to the local handler only.
func New(cfg Config, opts ...Option) (*slog.Logger, error) {
	s := &settings{out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var local slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		local = slog.NewJSONHandler(s.out, handlerOpts)
	case "text":
		local = slog.NewTextHandler(s.out, handlerOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}

	handler := local
	if cfg.Sentry.DSN != "" {
		sentryHandler, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			handler = newFanout(local, sentryHandler)
		}
	}

	l := slog.New(newContextHandler(handler, s.extractors...))
	if cfg.Service != "" {
		l = l.With(slog.String("service", cfg.Service))
	}
	return l, nil
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
