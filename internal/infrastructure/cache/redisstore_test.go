package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	s := NewRedisStore(client, "test:", time.Minute, logger.NewNopLogger())

	updated := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	require.NoError(t, s.Set(ctx, "connections", &Entry{Data: []byte(`[{"platform":"github"}]`), UpdatedAt: updated}))

	got, err := s.Get(ctx, "connections")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `[{"platform":"github"}]`, string(got.Data))
	assert.True(t, updated.Equal(got.UpdatedAt))
	assert.False(t, got.Stale)
}

func TestRedisStore_KeyPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	s := NewRedisStore(client, "mataroo:query:", 2*time.Minute, logger.NewNopLogger())

	require.NoError(t, s.Set(ctx, "subscription", &Entry{Data: []byte(`{}`), UpdatedAt: time.Now()}))

	assert.True(t, mr.Exists("mataroo:query:subscription"))
	assert.Equal(t, 2*time.Minute, mr.TTL("mataroo:query:subscription"))

	mr.FastForward(3 * time.Minute)
	got, err := s.Get(ctx, "subscription")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_InvalidateMissDoesNotCreateEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	s := NewRedisStore(client, "p:", 0, logger.NewNopLogger())

	require.NoError(t, s.Invalidate(ctx, "nothing"))
	assert.False(t, mr.Exists("p:nothing"))
}

func TestRedisStore_InvalidateAndDelete(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	s := NewRedisStore(client, "p:", 0, logger.NewNopLogger())

	require.NoError(t, s.Set(ctx, "k", &Entry{Data: []byte(`1`), UpdatedAt: time.Now()}))
	require.NoError(t, s.Invalidate(ctx, "k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.Stale)

	require.NoError(t, s.Delete(ctx, "k"))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SetClearsStaleFlag(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	s := NewRedisStore(client, "p:", 0, logger.NewNopLogger())

	require.NoError(t, s.Set(ctx, "k", &Entry{Data: []byte(`1`), UpdatedAt: time.Now()}))
	require.NoError(t, s.Invalidate(ctx, "k"))
	require.NoError(t, s.Set(ctx, "k", &Entry{Data: []byte(`2`), UpdatedAt: time.Now()}))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, got.Stale)
	assert.Equal(t, "2", string(got.Data))
}

func TestQuery_WithRedisStoreSnapshotIsByteExact(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	store := NewRedisStore(client, "p:", 0, logger.NewNopLogger())
	f := &countingFetcher{server: []item{{Name: "github", Active: true}}}
	q := newTestQuery(store, f, newFakeClock())

	_, err := q.Get(ctx)
	require.NoError(t, err)
	before, err := store.Get(ctx, "items")
	require.NoError(t, err)

	snap, err := q.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, q.SetData(ctx, nil))
	require.NoError(t, q.Restore(ctx, snap))

	after, err := store.Get(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, before.Data, after.Data)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}
