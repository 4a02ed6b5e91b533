package missing

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

// Miss is a placeholder key that no middleware resolved in any locale of
// the fallback chain.
type Miss struct {
	Seen   time.Time `json:"seen"`
	Locale string    `json:"locale"`
	Key    string    `json:"key"`
	Path   string    `json:"path,omitempty"`
	Count  int       `json:"count"`
}

// Sink stores misses.
type Sink interface {
	Record(ctx context.Context, misses []Miss) error
}

// Enqueuer hands a batch of misses over for storage.
type Enqueuer interface {
	Enqueue(ctx context.Context, misses []Miss) error
}

// EnqueuerFunc adapts a function to Enqueuer.
type EnqueuerFunc func(ctx context.Context, misses []Miss) error

// Enqueue implements Enqueuer.
func (f EnqueuerFunc) Enqueue(ctx context.Context, misses []Miss) error {
	return f(ctx, misses)
}

// Direct returns an Enqueuer writing straight to sink.
func Direct(sink Sink) Enqueuer {
	return EnqueuerFunc(sink.Record)
}

// Option configures a Collector.
type Option func(*Collector)

// WithBufferSize sets how many misses may wait for the next flush.
// Misses beyond it are dropped and counted. Default: 1024.
func WithBufferSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithBatchSize sets how many misses trigger an early flush. Default: 100.
func WithBatchSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithFlushInterval sets how often pending misses are flushed. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithFilter skips misses for which keep returns false.
func WithFilter(keep func(locale, key string) bool) Option {
	return func(c *Collector) {
		c.keep = keep
	}
}

// WithLogger sets the logger for failed flushes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// Collector buffers misses reported by a Service and flushes them in
// batches, so reporting never waits on storage.
type Collector struct {
	enq        Enqueuer
	queue      chan Miss
	keep       func(locale, key string) bool
	logger     *slog.Logger
	bufferSize int
	batchSize  int
	interval   time.Duration
	dropped    atomic.Int64
	running    atomic.Bool
}

// NewCollector returns a Collector feeding enq. Call Run to start flushing.
func NewCollector(enq Enqueuer, opts ...Option) (*Collector, error) {
	if enq == nil {
		return nil, ErrNilEnqueuer
	}
	c := &Collector{
		enq:        enq,
		logger:     logger.NewNope(),
		bufferSize: 1024,
		batchSize:  100,
		interval:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = make(chan Miss, c.bufferSize)
	return c, nil
}

// Handler returns the hook to install with lingo.WithMissingHandler.
// The request path is recorded when the request is in the context.
func (c *Collector) Handler() internal.MissingHandler {
	return func(ctx context.Context, locale, key string) {
		if c.keep != nil && !c.keep(locale, key) {
			return
		}
		m := Miss{Locale: locale, Key: key, Seen: time.Now().UTC(), Count: 1}
		if r, ok := internal.RequestFromContext(ctx); ok && r.URL != nil {
			m.Path = r.URL.Path
		}

		select {
		case c.queue <- m:
		default:
			c.dropped.Add(1)
		}
	}
}

// Dropped returns how many misses were discarded because the buffer was full.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Run flushes buffered misses until ctx is done, then flushes what is
// left with a short grace period.
func (c *Collector) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	pending := newBatch()
	for {
		select {
		case <-ctx.Done():
			c.drain(pending)
			return nil
		case m := <-c.queue:
			pending.add(m)
			if pending.size() >= c.batchSize {
				c.flush(ctx, pending)
			}
		case <-ticker.C:
			c.flush(ctx, pending)
		}
	}
}

func (c *Collector) drain(pending *batch) {
	for {
		select {
		case m := <-c.queue:
			pending.add(m)
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			c.flush(ctx, pending)
			return
		}
	}
}

func (c *Collector) flush(ctx context.Context, pending *batch) {
	misses := pending.take()
	if len(misses) == 0 {
		return
	}
	if err := c.enq.Enqueue(ctx, misses); err != nil {
		c.logger.WarnContext(ctx, "failed to record missing translations",
			slog.Int("count", len(misses)),
			slog.Any("error", err),
		)
	}
}

// batch merges repeated misses of the same locale and key.
type batch struct {
	index  map[[2]string]int
	misses []Miss
}

func newBatch() *batch {
	return &batch{index: map[[2]string]int{}}
}

func (b *batch) add(m Miss) {
	k := [2]string{m.Locale, m.Key}
	if i, ok := b.index[k]; ok {
		b.misses[i].Count += m.Count
		b.misses[i].Seen = m.Seen
		if m.Path != "" {
			b.misses[i].Path = m.Path
		}
		return
	}
	b.index[k] = len(b.misses)
	b.misses = append(b.misses, m)
}

func (b *batch) size() int {
	return len(b.misses)
}

func (b *batch) take() []Miss {
	out := b.misses
	b.misses = nil
	clear(b.index)
	return out
}
