package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache backends. Values may be stored as
// native objects (in-memory) or JSON strings (Redis); readers go through
// UnmarshalCacheValue to handle both.
type Cache interface {
	// Set stores a value with the given expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Get retrieves a value; the second return reports presence
	Get(ctx context.Context, key string) (interface{}, bool)

	// Delete removes a single key
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes every key with the given prefix
	DeleteByPrefix(ctx context.Context, prefix string)
}
