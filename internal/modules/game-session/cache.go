package gamesession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListCache stores the plain session listings under a generation. Reads that
// gate membership decisions (a single session, the available listing) are
// never cached. Invalidate retires the current generation, so an entry
// computed from a state read before a mutation committed can only land under
// a generation that is never read again.
type ListCache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, generation uint64, key string) ([]byte, bool, error)
	Set(ctx context.Context, generation uint64, key string, value []byte) error
	Invalidate(ctx context.Context) error
}

// Cached serves key from cache when present and otherwise loads it from the
// store. Cache failures are logged and never fail the read.
func Cached[T any](ctx context.Context, cache ListCache, key string, load func(context.Context) (T, error)) (T, error) {
	generation, err := cache.Generation(ctx)
	if err != nil {
		core.Logger(ctx).Warn("session cache unavailable", zap.Error(err))
		return load(ctx)
	}

	payload, found, err := cache.Get(ctx, generation, key)
	if err != nil {
		core.Logger(ctx).Warn("session cache read failed", zap.String("key", key), zap.Error(err))
	}

	if found {
		var value T
		if err := json.Unmarshal(payload, &value); err == nil {
			return value, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err = json.Marshal(value)
	if err != nil {
		return value, nil
	}

	if err := cache.Set(ctx, generation, key, payload); err != nil {
		core.Logger(ctx).Warn("session cache write failed", zap.String("key", key), zap.Error(err))
	}

	return value, nil
}

// InvalidateCache is called after a mutation committed.
func InvalidateCache(ctx context.Context, cache ListCache) {
	if err := cache.Invalidate(ctx); err != nil {
		core.LogError(ctx, "session cache invalidation failed", zap.Error(err))
	}
}

const CacheKeyAllSessions = "sessions:all"

func StatusCacheKey(status string) string {
	return "sessions:status:" + status
}

var _ ListCache = NopListCache{}

type NopListCache struct{}

func (NopListCache) Generation(context.Context) (uint64, error) { return 0, nil }

func (NopListCache) Get(context.Context, uint64, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NopListCache) Set(context.Context, uint64, string, []byte) error { return nil }

func (NopListCache) Invalidate(context.Context) error { return nil }

var _ ListCache = (*MemoryListCache)(nil)

const memoryGenerationKey = "generation"

// MemoryListCache keeps entries in process.
type MemoryListCache struct {
	cache *gocache.Cache
}

func NewMemoryListCache(ttl time.Duration) *MemoryListCache {
	c := gocache.New(ttl, 2*ttl)
	c.Set(memoryGenerationKey, uint64(0), gocache.NoExpiration)
	return &MemoryListCache{cache: c}
}

func (c *MemoryListCache) Generation(context.Context) (uint64, error) {
	value, found := c.cache.Get(memoryGenerationKey)
	if !found {
		return 0, errors.New("cache generation missing")
	}
	return value.(uint64), nil
}

func (c *MemoryListCache) Get(_ context.Context, generation uint64, key string) ([]byte, bool, error) {
	value, found := c.cache.Get(memoryEntryKey(generation, key))
	if !found {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

func (c *MemoryListCache) Set(_ context.Context, generation uint64, key string, value []byte) error {
	c.cache.Set(memoryEntryKey(generation, key), value, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryListCache) Invalidate(context.Context) error {
	_, err := c.cache.IncrementUint64(memoryGenerationKey, 1)
	return err
}

func memoryEntryKey(generation uint64, key string) string {
	return fmt.Sprintf("%d:%s", generation, key)
}

var _ ListCache = (*RedisListCache)(nil)

const redisKeyPrefix = "ludo:sessions"

// RedisListCache shares entries between service instances.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, ttl time.Duration) *RedisListCache {
	return &RedisListCache{client: client, ttl: ttl}
}

func (c *RedisListCache) Generation(ctx context.Context) (uint64, error) {
	generation, err := c.client.Get(ctx, redisGenerationKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RedisListCache) Get(ctx context.Context, generation uint64, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, redisEntryKey(generation, key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return payload, true, nil
}

func (c *RedisListCache) Set(ctx context.Context, generation uint64, key string, value []byte) error {
	return c.client.Set(ctx, redisEntryKey(generation, key), value, c.ttl).Err()
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, redisGenerationKey()).Err()
}

func redisGenerationKey() string {
	return redisKeyPrefix + ":generation"
}

func redisEntryKey(generation uint64, key string) string {
	return fmt.Sprintf("%s:%d:%s", redisKeyPrefix, generation, key)
}
