package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mataroo/mataroo/internal/shared/biztime"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Fetcher loads the authoritative value of a query from the backend.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is an exact copy of a query's cache entry, or of its absence.
type Snapshot struct {
	key   string
	entry *Entry
}

// Empty reports whether the query had no cached value when the snapshot was taken.
func (s Snapshot) Empty() bool {
	return s.entry == nil
}

// Query is one typed, keyed cache slot backed by a Store. Successful fetches
// are the source of truth; local edits (SetData) are speculative until the
// next fetch replaces them.
type Query[T any] struct {
	key       string
	store     Store
	fetch     Fetcher[T]
	staleTime time.Duration
	now       func() time.Time
	logger    logger.Interface
}

// NewQuery binds a fetcher to a store key. Results younger than staleTime are
// served from the store.
func NewQuery[T any](store Store, key string, fetch Fetcher[T], staleTime time.Duration, logger logger.Interface) *Query[T] {
	return &Query[T]{
		key:       key,
		store:     store,
		fetch:     fetch,
		staleTime: staleTime,
		now:       biztime.NowUTC,
		logger:    logger,
	}
}

func (q *Query[T]) Key() string {
	return q.key
}

// Get serves a fresh cached value or refetches.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	entry, err := q.store.Get(ctx, q.key)
	if err != nil {
		q.logger.Warnw("query cache read failed, fetching", "key", q.key, "error", err)
	} else if entry != nil && !entry.Stale && q.now().Sub(entry.UpdatedAt) < q.staleTime {
		value, decodeErr := q.decode(entry)
		if decodeErr == nil {
			return value, nil
		}
		q.logger.Warnw("discarding undecodable cache entry", "key", q.key, "error", decodeErr)
	}

	return q.Refetch(ctx)
}

// Peek returns the cached value without fetching. ok is false when nothing is
// cached yet (still loading) or the store cannot be read.
func (q *Query[T]) Peek(ctx context.Context) (value T, ok bool) {
	entry, err := q.store.Get(ctx, q.key)
	if err != nil || entry == nil {
		return value, false
	}
	value, err = q.decode(entry)
	if err != nil {
		return value, false
	}
	return value, true
}

// Refetch always calls the fetcher. On success the result replaces the cache
// entry; on failure the cache is left untouched.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	value, err := q.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := q.SetData(ctx, value); err != nil {
		q.logger.Warnw("failed to cache fetched value", "key", q.key, "error", err)
	}
	return value, nil
}

// SetData writes a value into the cache as if it had just been fetched.
func (q *Query[T]) SetData(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", q.key, err)
	}
	return q.store.Set(ctx, q.key, &Entry{Data: data, UpdatedAt: q.now()})
}

// Invalidate marks the entry stale so the next Get refetches.
func (q *Query[T]) Invalidate(ctx context.Context) error {
	return q.store.Invalidate(ctx, q.key)
}

func (q *Query[T]) Snapshot(ctx context.Context) (Snapshot, error) {
	entry, err := q.store.Get(ctx, q.key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", q.key, err)
	}
	return Snapshot{key: q.key, entry: entry.clone()}, nil
}

// Restore puts back exactly what Snapshot saw, including absence.
func (q *Query[T]) Restore(ctx context.Context, snap Snapshot) error {
	if snap.key != q.key {
		return fmt.Errorf("snapshot of %s cannot restore %s", snap.key, q.key)
	}
	if snap.entry == nil {
		return q.store.Delete(ctx, q.key)
	}
	return q.store.Set(ctx, q.key, snap.entry)
}

// OptimisticUpdate applies a speculative edit, runs the mutation, and on
// failure restores the pre-edit snapshot verbatim. Either way the query is
// refetched once afterwards so the cache reconverges to server state. The
// mutation's error is returned; a failed settle refetch is only logged.
func (q *Query[T]) OptimisticUpdate(ctx context.Context, apply func(current T) T, mutate func(ctx context.Context) error) error {
	snap, err := q.Snapshot(ctx)
	if err != nil {
		return err
	}

	current, _ := q.Peek(ctx)
	if err := q.SetData(ctx, apply(current)); err != nil {
		return fmt.Errorf("optimistic edit of %s: %w", q.key, err)
	}

	mutErr := mutate(ctx)
	if mutErr != nil {
		if err := q.Restore(ctx, snap); err != nil {
			q.logger.Errorw("rollback of optimistic edit failed", "key", q.key, "error", err)
		} else {
			q.logger.Infow("optimistic edit rolled back", "key", q.key, "error", mutErr)
		}
	}

	if _, err := q.Refetch(ctx); err != nil {
		q.logger.Warnw("settle refetch failed", "key", q.key, "error", err)
	}

	return mutErr
}

func (q *Query[T]) decode(entry *Entry) (T, error) {
	var value T
	if err := json.Unmarshal(entry.Data, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", q.key, err)
	}
	return value, nil
}
