package cache

import (
	"context"
	"time"
)

// Entry is one cached query result. Data is the JSON encoding of the value,
// so a snapshot taken from an Entry restores byte-for-byte.
type Entry struct {
	Data      []byte
	UpdatedAt time.Time
	// Stale is set by Invalidate; the next Get refetches regardless of age.
	Stale bool
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	data := make([]byte, len(e.Data))
	copy(data, e.Data)
	return &Entry{Data: data, UpdatedAt: e.UpdatedAt, Stale: e.Stale}
}

// Store is a keyed cache backend shared by all queries. Implementations must be
// safe for concurrent use and must not retain or hand out caller-owned slices.
type Store interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	// Invalidate marks an existing entry stale; a miss is not an error.
	Invalidate(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}
