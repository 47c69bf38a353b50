package eviction

import (
	"errors"
	"fmt"
)

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally. It only calls these
methods, always while holding its own lock, so implementations are not
required to be safe for concurrent use.
*/
type Policy[K comparable] interface {

	// OnGet is called whenever a live key is read from the cache.
	//
	// LRU moves the key to the front; FIFO ignores reads.
	OnGet(K)

	// OnPut is called whenever a key is written, new or overwritten.
	OnPut(K)

	// Remove is called when a key leaves the cache for any reason other
	// than Evict (invalidation, expiry).
	Remove(K)

	// Evict picks the victim, forgets it and returns it.
	// ok is false when the policy tracks no keys.
	Evict() (key K, ok bool)

	// Peek returns the key Evict would pick, without forgetting it.
	Peek() (key K, ok bool)

	// Keys returns the tracked keys, the one Evict would pick last first.
	Keys() []K

	// Len returns how many keys are tracked.
	Len() int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): Evicts the key that has NOT been read or
	// written for the longest time. Ties fall back to insertion order.
	LRU PolicyType = "LRU"

	// FIFO (First In First Out): Evicts the oldest inserted key, regardless of access.
	FIFO PolicyType = "FIFO"
)

// ErrUnknownPolicy is returned for a PolicyType the factory does not know.
var ErrUnknownPolicy = errors.New("unknown eviction policy")

// NewEvictionPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy. The zero value means LRU.
func NewEvictionPolicy[K comparable](t PolicyType) (Policy[K], error) {
	switch t {
	case LRU, "":
		return NewLRU[K](), nil
	case FIFO:
		return NewFIFO[K](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, t)
	}
}
