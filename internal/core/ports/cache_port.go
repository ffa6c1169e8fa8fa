package ports

import "time"

// CachePort is the device-local snapshot store. Implementations must
// treat a missing key as an error from Get so callers can fall back to
// an empty collection.
type CachePort interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}
