// Package cache provides generic, thread-safe cache implementations used by
// flowcore for node-type schema caching.
//
// Two cache types are offered:
//   - SimpleCache: no eviction policy (stores items indefinitely)
//   - LRUCache: least-recently-used eviction based on size
//
// All cache implementations are thread-safe with built-in statistics (always
// enabled for observability) and optional Prometheus metrics integration via
// functional options.
package cache

import (
	"strings"

	"github.com/c360/flowcore/errors"
)

// Cache represents a generic cache interface that all cache implementations must satisfy.
// The cache is parameterized by value type V for type safety.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found, zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key. Returns true if a new entry was created, false if updated.
	// Returns an error if the operation fails (e.g., invalid key).
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed and was deleted.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries in the cache.
	Size() int

	// Keys returns a slice of all keys currently in the cache.
	Keys() []string

	// Stats returns cache statistics. Never nil.
	Stats() *Statistics
}

// EvictCallback is called when an entry is evicted from the cache.
// It receives the key and value of the evicted entry.
type EvictCallback[V any] func(key string, value V)

// NewSimple creates a cache with no eviction policy.
func NewSimple[V any](options ...Option[V]) (Cache[V], error) {
	return newSimpleCache(applyOptions(options...))
}

// NewLRU creates a cache that evicts the least recently used entry once
// maxSize is exceeded.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapStructural(
			errors.ErrInvalidRegistration, "cache", "NewLRU", "max size validation")
	}
	return newLRUCache(maxSize, applyOptions(options...))
}

// validateKey rejects empty keys and keys with embedded control characters.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapStructural(
			errors.ErrMissingField, "cache", "validateKey", "empty key check")
	}
	if strings.ContainsAny(key, "\x00\n\r") {
		return errors.WrapStructural(
			errors.ErrInvalidRegistration, "cache", "validateKey", "key character check")
	}
	return nil
}
