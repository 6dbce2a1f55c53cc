package cache

import (
	"context"
	"time"
)

// Cache defines the caching operations interface following hexagonal architecture.
// This is a port that can be implemented by different cache providers (Redis, Memcached, etc.).
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached value or an error if not found or on failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// HGetAll retrieves all field/value pairs of the hash stored at key.
	// A missing key yields an empty map, not an error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// ReplaceAll atomically replaces a set of hashes: every listed key is
	// deleted and rewritten with the given fields inside one transaction,
	// so readers observe either the old state or the new one, never a mix.
	ReplaceAll(ctx context.Context, hashes map[string]map[string]string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
