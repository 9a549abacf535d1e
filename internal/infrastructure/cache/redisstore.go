package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

const (
	fieldData      = "data"
	fieldUpdatedAt = "updated_at"
	fieldStale     = "stale"

	// entries outlive their stale window so a restarted dashboard can still
	// show the last known value while refetching
	defaultEntryTTL = 30 * time.Minute
)

// RedisStore implements Store using one Redis hash per query key. It lets
// several dashboard processes for the same user share query results.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisStore creates a Redis-backed store.
// Parameters:
//   - client: Redis client instance
//   - prefix: Key prefix for namespacing (e.g., "mataroo:query:")
//   - ttl: Time-to-live of an entry; zero selects the default
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger logger.Interface) *RedisStore {
	if ttl <= 0 {
		ttl = defaultEntryTTL
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStore) buildKey(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	result, err := s.client.HGetAll(ctx, s.buildKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get query %s from redis: %w", key, err)
	}

	data, ok := result[fieldData]
	if !ok {
		return nil, nil // Cache miss
	}

	entry := &Entry{Data: []byte(data), Stale: result[fieldStale] == "1"}
	if ts, ok := result[fieldUpdatedAt]; ok {
		nanos, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			s.logger.Warnw("corrupt query timestamp, treating entry as stale", "key", key, "error", err)
			entry.Stale = true
		} else {
			entry.UpdatedAt = time.Unix(0, nanos).UTC()
		}
	}
	return entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry) error {
	fullKey := s.buildKey(key)
	fields := map[string]interface{}{
		fieldData:      entry.Data,
		fieldUpdatedAt: entry.UpdatedAt.UnixNano(),
		fieldStale:     boolToInt(entry.Stale),
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fullKey)
	pipe.HSet(ctx, fullKey, fields)
	pipe.Expire(ctx, fullKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set query %s in redis: %w", key, err)
	}

	s.logger.Debugw("query cached", "key", key, "bytes", len(entry.Data), "stale", entry.Stale)
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	fullKey := s.buildKey(key)
	exists, err := s.client.Exists(ctx, fullKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate query %s: %w", key, err)
	}
	if exists == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, fullKey, fieldStale, 1).Err(); err != nil {
		return fmt.Errorf("failed to invalidate query %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete query %s: %w", key, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
