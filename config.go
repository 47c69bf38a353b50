package cache

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/krisalay/expiring-cache/eviction"
	"github.com/krisalay/expiring-cache/expiration"
	"github.com/krisalay/expiring-cache/types"
)

// Config is fixed at construction. MaxSize and TTL are required.
type Config[K comparable, V any] struct {
	// MaxSize is the entry-count capacity.
	MaxSize int

	// TTL is how long an entry may be served after its last write
	// (or last access with expiration.AfterAccess).
	TTL time.Duration

	// Expiry defaults to expiration.AfterWrite.
	Expiry expiration.Mode

	// EvictionPolicy defaults to eviction.LRU.
	EvictionPolicy eviction.PolicyType

	// RemovalListener is told about every entry that leaves the cache.
	// It runs on a background worker; it may be slow and it may panic.
	// It may call back into the cache, except Flush and Close: both wait
	// for the listener to return and would never finish.
	RemovalListener types.RemovalListener[K, V]

	// Clock defaults to the system clock.
	Clock types.Clock

	// Metrics is an extra sink next to the built-in counters, e.g. Prometheus.
	Metrics types.Metrics

	// Logger defaults to the global logger tagged component=cache.
	Logger *logrus.Entry
}

func (c Config[K, V]) validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfiguration, c.MaxSize)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %v", ErrInvalidConfiguration, c.TTL)
	}
	return nil
}
