package cache

import (
	"time"
)

// CacheService is the generic cache used for harvest cooldowns and
// rate-limit backoff markers.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Add stores a value only when the key is absent, returning
	// ErrNotStored otherwise
	Add(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
