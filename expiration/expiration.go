// This file defines how cache entries expire over time.

package expiration

import (
	"errors"
	"fmt"
	"time"

	"github.com/krisalay/expiring-cache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so expiration behavior can be swapped easily.
*/
type Strategy interface {

	// IsExpired reports whether an entry stamped with ts is dead at now.
	IsExpired(ts *types.Timestamps, now time.Time) bool

	// OnAccess is called whenever a cache entry is read successfully.
	OnAccess(ts *types.Timestamps, now time.Time)

	// OnWrite is called whenever a cache entry is written or replaced.
	OnWrite(ts *types.Timestamps, now time.Time)
}

// Mode selects which timestamp the TTL counts from.
type Mode string

const (
	// AfterWrite counts from the last write. Reads do not extend the entry's life.
	AfterWrite Mode = "write"

	// AfterAccess counts from the last read or write (sliding TTL).
	AfterAccess Mode = "access"
)

var (
	ErrUnknownMode = errors.New("unknown expiration mode")
	ErrInvalidTTL  = errors.New("ttl must be positive")
)

// NewStrategy builds the strategy for mode. The zero Mode means AfterWrite.
func NewStrategy(mode Mode, ttl time.Duration) (Strategy, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTTL, ttl)
	}
	switch mode {
	case AfterWrite, "":
		return &ExpireAfterWrite{TTL: ttl}, nil
	case AfterAccess:
		return &ExpireAfterAccess{TTL: ttl}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// expiredSince reports whether at least ttl has elapsed between since and now.
func expiredSince(since, now time.Time, ttl time.Duration) bool {
	return now.Sub(since) >= ttl
}
