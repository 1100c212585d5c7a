package cache

import (
	"github.com/dialhaven/dialhaven/internal/config"
	"github.com/dialhaven/dialhaven/internal/logger"
	redisClient "github.com/dialhaven/dialhaven/internal/redis"
)

// CacheType represents the type of cache to use
type CacheType string

const (
	// CacheTypeInMemory represents an in-memory cache
	CacheTypeInMemory CacheType = "inmemory"

	// CacheTypeRedis represents a Redis-backed cache
	CacheTypeRedis CacheType = "redis"
)

// Initialize initializes the cache system based on the configured type.
// Falls back to in-memory when Redis is requested but unavailable.
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system", "type", cfg.Cache.Type)

	var cache Cache

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		client, err := redisClient.NewClient(cfg, log)
		if err != nil {
			log.Errorw("failed to connect redis cache, falling back to in-memory", "error", err)
			InitializeInMemoryCache()
			cache = GetInMemoryCache()
			break
		}
		InitializeRedisCache(client, log)
		cache = GetRedisCache()
	case CacheTypeInMemory:
		fallthrough
	default:
		InitializeInMemoryCache()
		cache = GetInMemoryCache()
	}

	log.Infow("cache system initialized", "type", cfg.Cache.Type)
	return cache
}
