package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	expiresAt time.Time
	key       string
	entry     Entry
}

func (it *memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// MemoryOption configures Memory.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the number of entries; the least recently used
// entry is evicted first. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = max(n, 0)
	}
}

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the sweeper; expired entries are then dropped on access.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.cleanupInterval = d
	}
}

// Memory is an in-process Store with TTL expiry and LRU eviction.
type Memory struct {
	items           map[string]*list.Element
	order           *list.List
	done            chan struct{}
	maxEntries      int
	cleanupInterval time.Duration
	mu              sync.Mutex
	closed          bool
}

// NewMemory creates a Memory store. Call Close to stop its sweeper.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:           make(map[string]*list.Element),
		order:           list.New(),
		done:            make(chan struct{}),
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cleanupInterval > 0 {
		go m.sweep()
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Entry{}, false, ErrClosed
	}
	elem, ok := m.items[key]
	if !ok {
		return Entry{}, false, nil
	}
	it := elem.Value.(*memoryItem)
	if it.expired(time.Now()) {
		m.remove(elem)
		return Entry{}, false, nil
	}
	m.order.MoveToFront(elem)
	return it.entry, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, e Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		it := elem.Value.(*memoryItem)
		it.entry, it.expiresAt = e, expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.order.PushFront(&memoryItem{key: key, entry: e, expiresAt: expiresAt})
	return nil
}

// Purge implements Store.
func (m *Memory) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. It is safe to call more than once.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.dropExpired()
		}
	}
}

func (m *Memory) dropExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryItem).expired(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

// remove must be called with mu held.
func (m *Memory) remove(elem *list.Element) {
	m.order.Remove(elem)
	delete(m.items, elem.Value.(*memoryItem).key)
}

var _ Store = (*Memory)(nil)
