package missing_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
	"github.com/dmitrymomot/lingo/pkg/missing"
)

// memorySink collects every recorded batch.
type memorySink struct {
	mu      sync.Mutex
	batches [][]missing.Miss
	err     error
}

func (s *memorySink) Record(_ context.Context, misses []missing.Miss) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, misses)
	return nil
}

func (s *memorySink) all() []missing.Miss {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []missing.Miss
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestNewCollector(t *testing.T) {
	t.Parallel()

	_, err := missing.NewCollector(nil)
	require.ErrorIs(t, err, missing.ErrNilEnqueuer)
}

func TestCollector(t *testing.T) {
	t.Parallel()

	t.Run("merges repeats and flushes on stop", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		c, err := missing.NewCollector(missing.Direct(sink), missing.WithFlushInterval(time.Hour))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- c.Run(ctx) }()

		h := c.Handler()
		h(context.Background(), "de", "greeting")
		h(context.Background(), "de", "greeting")
		h(context.Background(), "en", "greeting")

		cancel()
		require.NoError(t, <-done)

		got := sink.all()
		require.Len(t, got, 2)
		counts := map[string]int{}
		for _, m := range got {
			counts[m.Locale+"/"+m.Key] = m.Count
		}
		assert.Equal(t, map[string]int{"de/greeting": 2, "en/greeting": 1}, counts)
	})

	t.Run("flushes when batch is full", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		c, err := missing.NewCollector(missing.Direct(sink),
			missing.WithBatchSize(2),
			missing.WithFlushInterval(time.Hour),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Run(ctx) }()

		h := c.Handler()
		h(context.Background(), "de", "a")
		h(context.Background(), "de", "b")

		require.Eventually(t, func() bool { return len(sink.all()) == 2 }, time.Second, 5*time.Millisecond)
	})

	t.Run("records request path", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		c, err := missing.NewCollector(missing.Direct(sink), missing.WithFlushInterval(10*time.Millisecond))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Run(ctx) }()

		req := httptest.NewRequest("GET", "/users/42", nil)
		c.Handler()(internal.WithRequest(context.Background(), req), "de", "title")

		require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "/users/42", sink.all()[0].Path)
		assert.False(t, sink.all()[0].Seen.IsZero())
	})

	t.Run("filter", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		c, err := missing.NewCollector(missing.Direct(sink),
			missing.WithFilter(func(locale, key string) bool { return locale != "en" }),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- c.Run(ctx) }()

		c.Handler()(context.Background(), "en", "ignored")
		c.Handler()(context.Background(), "de", "kept")
		cancel()
		require.NoError(t, <-done)

		got := sink.all()
		require.Len(t, got, 1)
		assert.Equal(t, "kept", got[0].Key)
	})

	t.Run("full buffer drops", func(t *testing.T) {
		t.Parallel()

		c, err := missing.NewCollector(missing.Direct(&memorySink{}), missing.WithBufferSize(1))
		require.NoError(t, err)

		h := c.Handler()
		h(context.Background(), "de", "a")
		h(context.Background(), "de", "b")
		h(context.Background(), "de", "c")
		assert.EqualValues(t, 2, c.Dropped())
	})

	t.Run("enqueue failure is logged", func(t *testing.T) {
		t.Parallel()

		calls := make(chan int, 1)
		enq := missing.EnqueuerFunc(func(_ context.Context, misses []missing.Miss) error {
			calls <- len(misses)
			return errors.New("queue unavailable")
		})
		c, err := missing.NewCollector(enq, missing.WithBatchSize(1))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Run(ctx) }()

		c.Handler()(context.Background(), "de", "a")
		select {
		case n := <-calls:
			assert.Equal(t, 1, n)
		case <-time.After(time.Second):
			t.Fatal("enqueue was not called")
		}
	})

	t.Run("single runner", func(t *testing.T) {
		t.Parallel()

		flushed := make(chan struct{}, 1)
		enq := missing.EnqueuerFunc(func(context.Context, []missing.Miss) error {
			select {
			case flushed <- struct{}{}:
			default:
			}
			return nil
		})
		c, err := missing.NewCollector(enq, missing.WithBatchSize(1))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- c.Run(ctx) }()

		c.Handler()(context.Background(), "de", "a")
		select {
		case <-flushed:
		case <-time.After(time.Second):
			t.Fatal("collector did not start")
		}

		assert.ErrorIs(t, c.Run(ctx), missing.ErrAlreadyRunning)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestCollectorWithService(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	c, err := missing.NewCollector(missing.Direct(sink))
	require.NoError(t, err)

	svc, err := internal.New(
		internal.WithLocales("en", "de"),
		internal.WithMiddleware(internal.Lookup(internal.Dictionary{"en": {"ok": "success"}})),
		internal.WithMissingHandler(c.Handler()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	got, err := svc.TranslateString(context.Background(), "de", "#{ok} #{nope}")
	require.NoError(t, err)
	assert.Equal(t, "success #{nope}", got)

	cancel()
	require.NoError(t, <-done)

	misses := sink.all()
	require.Len(t, misses, 1)
	assert.Equal(t, "de", misses[0].Locale)
	assert.Equal(t, "nope", misses[0].Key)
}

func TestWorker(t *testing.T) {
	t.Parallel()

	args := missing.RecordArgs{Misses: []missing.Miss{{Locale: "de", Key: "a", Count: 3}}}
	assert.Equal(t, "lingo:record_missing", args.Kind())
	assert.Equal(t, missing.QueueName, args.InsertOpts().Queue)

	job := &river.Job[missing.RecordArgs]{JobRow: &rivertype.JobRow{ID: 7, Attempt: 1}, Args: args}

	t.Run("stores batch", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		require.NoError(t, missing.NewWorker(sink, nil).Work(context.Background(), job))
		assert.Equal(t, args.Misses, sink.all())
	})

	t.Run("sink failure is returned for retry", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{err: errors.New("db down")}
		require.Error(t, missing.NewWorker(sink, nil).Work(context.Background(), job))
	})
}
