package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

type item struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock               { return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)} }

// countingFetcher serves whatever `server` currently holds and counts calls.
type countingFetcher struct {
	calls  atomic.Int32
	server []item
	err    error
}

func (f *countingFetcher) fetch(ctx context.Context) ([]item, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]item, len(f.server))
	copy(out, f.server)
	return out, nil
}

func newTestQuery(store Store, f *countingFetcher, clock *fakeClock) *Query[[]item] {
	q := NewQuery(store, "items", f.fetch, 5*time.Minute, logger.NewNopLogger())
	q.now = clock.Now
	return q
}

func TestQuery_GetServesFreshEntryFromCache(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "a", Active: true}}}
	clock := newFakeClock()
	q := newTestQuery(NewMemoryStore(), f, clock)

	first, err := q.Get(ctx)
	require.NoError(t, err)
	second, err := q.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestQuery_GetRefetchesAfterStaleTime(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "a"}}}
	clock := newFakeClock()
	q := newTestQuery(NewMemoryStore(), f, clock)

	_, err := q.Get(ctx)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	f.server = []item{{Name: "b"}}

	got, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "b"}}, got)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestQuery_InvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "a"}}}
	q := newTestQuery(NewMemoryStore(), f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Invalidate(ctx))

	_, err = q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestQuery_FetchErrorLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "a"}}}
	q := newTestQuery(NewMemoryStore(), f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)

	f.err = errors.New("backend down")
	_, err = q.Refetch(ctx)
	require.Error(t, err)

	cached, ok := q.Peek(ctx)
	require.True(t, ok)
	assert.Equal(t, []item{{Name: "a"}}, cached)
}

func TestQuery_PeekNeverFetches(t *testing.T) {
	f := &countingFetcher{}
	q := newTestQuery(NewMemoryStore(), f, newFakeClock())

	_, ok := q.Peek(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestQuery_SnapshotRestoreIncludingAbsence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := newTestQuery(store, &countingFetcher{}, newFakeClock())

	empty, err := q.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	require.NoError(t, q.SetData(ctx, []item{{Name: "x"}}))
	require.NoError(t, q.Restore(ctx, empty))

	_, ok := q.Peek(ctx)
	assert.False(t, ok, "restoring an empty snapshot removes the entry")
}

func TestQuery_RestoreRejectsForeignSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewQuery(store, "a", (&countingFetcher{}).fetch, time.Minute, logger.NewNopLogger())
	b := NewQuery(store, "b", (&countingFetcher{}).fetch, time.Minute, logger.NewNopLogger())

	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Error(t, b.Restore(ctx, snap))
}

func TestOptimisticUpdate_FailureRestoresExactBytesThenRefetchesOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f := &countingFetcher{server: []item{{Name: "github", Active: true}, {Name: "twitter", Active: true}}}
	q := newTestQuery(store, f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)
	before, err := store.Get(ctx, "items")
	require.NoError(t, err)

	var duringMutation []item
	var atRefetch *Entry
	f.err = nil
	mutationErr := errors.New("delete failed")

	// observe the cache at the moment the settle refetch starts
	settle := q.fetch
	q.fetch = func(ctx context.Context) ([]item, error) {
		atRefetch, _ = store.Get(ctx, "items")
		return settle(ctx)
	}

	err = q.OptimisticUpdate(ctx,
		func(current []item) []item {
			out := []item{}
			for _, it := range current {
				if it.Name != "github" {
					out = append(out, it)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			duringMutation, _ = q.Peek(ctx)
			return mutationErr
		},
	)

	assert.ErrorIs(t, err, mutationErr)
	assert.Equal(t, []item{{Name: "twitter", Active: true}}, duringMutation, "edit is visible before the server answers")
	require.NotNil(t, atRefetch)
	assert.Equal(t, before.Data, atRefetch.Data, "rollback is byte-for-byte")
	assert.Equal(t, before.UpdatedAt, atRefetch.UpdatedAt)
	assert.Equal(t, int32(2), f.calls.Load(), "initial load plus exactly one settle refetch")
}

func TestOptimisticUpdate_SuccessKeepsServerTruth(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "github"}, {Name: "twitter"}}}
	q := newTestQuery(NewMemoryStore(), f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)

	err = q.OptimisticUpdate(ctx,
		func(current []item) []item { return current[1:] },
		func(ctx context.Context) error {
			f.server = []item{{Name: "twitter"}}
			return nil
		},
	)
	require.NoError(t, err)

	got, ok := q.Peek(ctx)
	require.True(t, ok)
	assert.Equal(t, []item{{Name: "twitter"}}, got)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestOptimisticUpdate_SettleRefetchFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{server: []item{{Name: "github"}}}
	q := newTestQuery(NewMemoryStore(), f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)

	err = q.OptimisticUpdate(ctx,
		func(current []item) []item { return nil },
		func(ctx context.Context) error {
			f.err = errors.New("list unavailable")
			return nil
		},
	)
	assert.NoError(t, err)
}
