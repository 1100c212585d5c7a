package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dialhaven/dialhaven/internal/logger"
	redisClient "github.com/dialhaven/dialhaven/internal/redis"
	"github.com/redis/go-redis/v9"
)

const (
	// ScanCount determines how many keys to scan at once when using SCAN
	ScanCount = 100
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// Redis cache instance
var redisCache *RedisCache

// NewRedisCache creates a new Redis cache
func NewRedisCache(client *redisClient.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client: client.GetClient(),
		log:    log,
	}
}

// InitializeRedisCache initializes the global Redis cache instance
func InitializeRedisCache(client *redisClient.Client, log *logger.Logger) {
	if redisCache == nil {
		redisCache = NewRedisCache(client, log)
	}
}

// GetRedisCache returns the global Redis cache instance
func GetRedisCache() *RedisCache {
	return redisCache
}

// Set stores a value as JSON with the given expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = ExpiryDefaultRedis
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Errorw("failed to marshal cache value", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, string(data), expiration).Err(); err != nil {
		c.log.Errorw("failed to set cache value", "key", key, "error", err)
	}
}

// Get retrieves a value; Redis values come back as JSON strings
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Errorw("failed to get cache value", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Delete removes a single key
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Errorw("failed to delete cache key", "key", key, "error", err)
	}
}

// DeleteByPrefix removes every key with the given prefix using SCAN
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", ScanCount).Result()
		if err != nil {
			c.log.Errorw("failed to scan cache keys", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.log.Errorw("failed to delete cache keys", "prefix", prefix, "error", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
