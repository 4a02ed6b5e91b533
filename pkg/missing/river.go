package missing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/lingo/pkg/logger"
)

// QueueName is the river queue misses are recorded on.
const QueueName = "lingo_missing"

// RecordArgs is the river job carrying one batch of misses.
type RecordArgs struct {
	Misses []Miss `json:"misses"`
}

// Kind implements river.JobArgs.
func (RecordArgs) Kind() string {
	return "lingo:record_missing"
}

// InsertOpts implements river.JobArgsWithInsertOpts.
func (RecordArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueName, MaxAttempts: 5}
}

// Worker writes job batches to a Sink.
type Worker struct {
	river.WorkerDefaults[RecordArgs]
	sink   Sink
	logger *slog.Logger
}

// NewWorker returns a Worker writing to sink.
func NewWorker(sink Sink, l *slog.Logger) *Worker {
	if l == nil {
		l = logger.NewNope()
	}
	return &Worker{sink: sink, logger: l}
}

// Work implements river.Worker.
func (w *Worker) Work(ctx context.Context, job *river.Job[RecordArgs]) error {
	if err := w.sink.Record(ctx, job.Args.Misses); err != nil {
		w.logger.ErrorContext(ctx, "failed to store missing translations",
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Int("count", len(job.Args.Misses)),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// QueueOption configures a Queue.
type QueueOption func(*queueConfig)

type queueConfig struct {
	logger     *slog.Logger
	maxWorkers int
}

// WithQueueLogger sets the logger for the river client and worker.
func WithQueueLogger(l *slog.Logger) QueueOption {
	return func(c *queueConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets how many batches are stored concurrently. Default: 2.
func WithMaxWorkers(n int) QueueOption {
	return func(c *queueConfig) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// Queue is an Enqueuer that records misses through river jobs, so
// batches survive restarts and storage failures are retried.
type Queue struct {
	client *river.Client[pgx.Tx]
	logger *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewQueue creates a river client working on QueueName and storing
// batches in sink. Jobs can be enqueued before Start.
func NewQueue(pool *pgxpool.Pool, sink Sink, opts ...QueueOption) (*Queue, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	cfg := &queueConfig{logger: logger.NewNope(), maxWorkers: 2}
	for _, opt := range opts {
		opt(cfg)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewWorker(sink, cfg.logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  map[string]river.QueueConfig{QueueName: {MaxWorkers: cfg.maxWorkers}},
		Workers: workers,
		Logger:  cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("missing: create client: %w", err)
	}

	return &Queue{client: client, logger: cfg.logger}, nil
}

// Enqueue implements Enqueuer.
func (q *Queue) Enqueue(ctx context.Context, misses []Miss) error {
	if len(misses) == 0 {
		return nil
	}
	if _, err := q.client.Insert(ctx, RecordArgs{Misses: misses}, nil); err != nil {
		return fmt.Errorf("missing: enqueue: %w", err)
	}
	return nil
}

// Start begins working queued batches.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return nil
	}
	if err := q.client.Start(ctx); err != nil {
		return fmt.Errorf("missing: start client: %w", err)
	}
	q.started = true
	q.logger.Info("missing translation recorder started")
	return nil
}

// Stop waits for running jobs and stops the client.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return nil
	}
	if err := q.client.Stop(ctx); err != nil {
		return fmt.Errorf("missing: stop client: %w", err)
	}
	q.started = false
	q.logger.Info("missing translation recorder stopped")
	return nil
}
