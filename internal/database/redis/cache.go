package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when the key is absent or the cache is disabled
var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through cache for expensive list endpoints.
// Write paths invalidate by key pattern after the transaction commits.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, pattern string) error
}

type cacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) Cache {
	return &cacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get cache key %s: %v", key, err)
	}

	return json.Unmarshal([]byte(data), dest)
}

func (r *cacheRepository) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %v", err)
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// Invalidate удаляет все ключи по шаблону через SCAN, без блокирующего KEYS
func (r *cacheRepository) Invalidate(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %v", err)
	}
	return nil
}

// NullCache is used when redis is unreachable, every read is a miss
type NullCache struct{}

func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (NullCache) Set(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (NullCache) Invalidate(ctx context.Context, pattern string) error {
	return nil
}

// Cache keys for the list endpoints
const (
	KeyAvailableLots = "lots:available:all"

	PatternLots  = "lots:*"
	PatternSpots = "spots:*"
)

// SpotsKey builds the cache key for a lot's spot listing with a status filter
func SpotsKey(lotID int64, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("spots:lot=%d:status=%s", lotID, status)
}

// SpotsPattern matches every cached spot listing of one lot
func SpotsPattern(lotID int64) string {
	return fmt.Sprintf("spots:lot=%d:*", lotID)
}
