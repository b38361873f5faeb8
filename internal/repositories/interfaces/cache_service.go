package interfaces

import (
	"context"
	"time"
)

// CacheService is the subset of the Redis cache used by repositories and
// services. Implementations return cache.ErrCacheMiss for absent keys.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
