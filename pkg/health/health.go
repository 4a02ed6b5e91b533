package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/lingo/middlewares"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

const (
	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"

	// MessageReady and MessageUnavailable are placeholders, so probes read
	// in the caller's locale when the catalog has them.
	MessageReady       = "#{health.ready}"
	MessageUnavailable = "#{health.unavailable}"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to their functions.
type Checks map[string]CheckFunc

// Check is the outcome of a single check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the readiness response body.
type Report struct {
	Checks  map[string]Check `json:"checks,omitempty"`
	Status  string           `json:"status"`
	Message string           `json:"message"`
}

// HTTPStatus is 503 when any check failed.
func (r *Report) HTTPStatus() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Ready.
type Option func(*config)

// WithTimeout bounds all checks together. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes checks concurrently. A failing check never cancels the others.
func Run(ctx context.Context, checks Checks, opts ...Option) *Report {
	cfg := &config{timeout: 5 * time.Second, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	report := &Report{Status: StatusHealthy, Message: MessageReady}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	report.Checks = make(map[string]Check, len(checks))
	for name, check := range checks {
		g.Go(func() error {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result.Status == StatusUnhealthy {
				report.Status = StatusUnhealthy
				report.Message = MessageUnavailable
			}
			return nil
		})
	}
	_ = g.Wait()

	return report
}

// Live always reports healthy while the process serves requests.
func Live() middlewares.HandlerFunc {
	return func(http.ResponseWriter, *http.Request) (any, error) {
		return &Report{Status: StatusHealthy, Message: MessageReady}, nil
	}
}

// Ready runs checks on every request.
func Ready(checks Checks, opts ...Option) middlewares.HandlerFunc {
	return func(_ http.ResponseWriter, r *http.Request) (any, error) {
		return Run(r.Context(), checks, opts...), nil
	}
}
