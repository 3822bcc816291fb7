// Package cache provides a small cache abstraction with redis and in-memory
// backends. The redis backend carries production traffic; the memory backend
// stands in for it in tests and single-node development.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheNotFound is returned when a key does not exist.
var ErrCacheNotFound = errors.New("cache: key not found")

// Cache is the operation set shared by all backends.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Keys returns the keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Increment atomically adds delta to an integer value, creating it at
	// delta when absent, and returns the new value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// TTL returns the remaining lifetime of a key.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire sets the remaining lifetime of a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config holds settings shared by cache backends.
type Config struct {
	// KeyPrefix is prepended to every key, separating applications that
	// share one backend.
	KeyPrefix string

	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration
}

// DefaultConfig returns the settings used when none are provided.
func DefaultConfig() *Config {
	return &Config{
		KeyPrefix:  "inventory",
		DefaultTTL: 0,
	}
}

// CacheError wraps a backend failure with the operation and key involved.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
