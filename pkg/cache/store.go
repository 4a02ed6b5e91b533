package cache

import (
	"context"
	"time"
)

// Entry is a cached lookup result. Found is false for a cached miss.
type Entry struct {
	Text  string `json:"t"`
	Found bool   `json:"f"`
}

// Store keeps lookup entries.
//
// A non-positive ttl passed to Set stores the entry without expiry.
type Store interface {
	// Get reports ok=false when nothing is cached under key.
	Get(ctx context.Context, key string) (e Entry, ok bool, err error)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
	// Purge drops every entry of this store.
	Purge(ctx context.Context) error
	Close() error
}
