package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nao1215/wordcrawl/internal/model"
)

// DefaultKeyPrefix is prepended to the run ID to form the Redis key.
const DefaultKeyPrefix = "wordcrawl:status:"

// RedisStatusStore stores crawl status in Redis as JSON with a TTL.
type RedisStatusStore struct {
	client redis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// NewRedisStatusStore initializes a Redis-backed StatusStore.
func NewRedisStatusStore(addr, prefix string, ttl time.Duration) *RedisStatusStore {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStatusStore{
		client: client,
		closer: client.Close,
		prefix: prefix,
		ttl:    ttl,
	}
}

// newRedisStatusStoreWithClient wraps an existing client. The caller keeps
// ownership of the client.
func newRedisStatusStoreWithClient(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{
		client: client,
		closer: func() error { return nil },
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks that the Redis server is reachable.
func (s *RedisStatusStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis is not reachable: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStatusStore) Close() error {
	return s.closer()
}

// key returns the Redis key of a run.
func (s *RedisStatusStore) key(runID string) string {
	return s.prefix + runID
}

// SetStatus writes the status record to Redis.
func (s *RedisStatusStore) SetStatus(ctx context.Context, status model.CrawlStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	if err := s.client.Set(ctx, s.key(status.RunID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store status of run %s: %w", status.RunID, err)
	}
	return nil
}

// GetStatus reads the status record from Redis. A missing key is reported
// as not found, not as an error.
func (s *RedisStatusStore) GetStatus(ctx context.Context, runID string) (model.CrawlStatus, bool, error) {
	val, err := s.client.Get(ctx, s.key(runID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.CrawlStatus{}, false, nil
		}
		return model.CrawlStatus{}, false, fmt.Errorf("failed to load status of run %s: %w", runID, err)
	}

	var status model.CrawlStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return model.CrawlStatus{}, false, fmt.Errorf("failed to decode status of run %s: %w", runID, err)
	}

	return status, true, nil
}
