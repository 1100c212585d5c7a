package cache

import "time"

// Default TTLs per backend. The plan catalog is the only cached entity, so
// these can stay generous; usage counters are never cached.
const (
	ExpiryDefaultInMemory = 30 * time.Minute
	ExpiryDefaultRedis    = 5 * time.Minute
)
