package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/lingo/pkg/logger"
)

// Reloadable is anything that can refresh its translations, such as *Catalog.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithReloaderLogger sets the logger for failed reloads.
func WithReloaderLogger(l *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReloadTimeout bounds each reload. Zero means no limit.
func WithReloadTimeout(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.timeout = d
	}
}

// WithOnReload registers a hook called after every reload attempt.
func WithOnReload(fn func(err error)) ReloaderOption {
	return func(r *Reloader) {
		r.onReload = fn
	}
}

// Reloader refreshes a target on a cron schedule. Standard five-field
// expressions and descriptors such as "@hourly" or "@every 5m" are accepted.
type Reloader struct {
	target   Reloadable
	schedule cron.Schedule
	logger   *slog.Logger
	onReload func(err error)
	timeout  time.Duration
	running  atomic.Bool
}

// NewReloader parses expr and returns a Reloader for target.
func NewReloader(target Reloadable, expr string, opts ...ReloaderOption) (*Reloader, error) {
	if target == nil {
		return nil, ErrNilSource
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %s", ErrInvalidSchedule, expr, err)
	}

	r := &Reloader{
		target:   target,
		schedule: schedule,
		logger:   logger.NewNope(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run reloads the target at every scheduled time until ctx is done.
// A failed reload is logged and the schedule continues.
func (r *Reloader) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrReloaderRunning
	}
	defer r.running.Store(false)

	for {
		timer := time.NewTimer(time.Until(r.schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		r.reload(ctx)
	}
}

func (r *Reloader) reload(ctx context.Context) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	err := r.target.Reload(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "translation reload failed", slog.Any("error", err))
	}
	if r.onReload != nil {
		r.onReload(err)
	}
}
