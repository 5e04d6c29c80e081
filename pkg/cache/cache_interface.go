package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer (Redis in production).
type Cache interface {
	// Get decodes the value stored under key into dest.
	// found == false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set encodes value and stores it with ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// Increment atomically adds one to the counter at key and returns the
	// new value; a missing key counts from zero.
	Increment(ctx context.Context, key string) (int64, error)

	// GetInt returns the counter at key, zero when missing.
	GetInt(ctx context.Context, key string) (int64, error)

	Ping(ctx context.Context) error
}
