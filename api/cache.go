package api

import (
	"context"

	"github.com/krisalay/expiring-cache/stats"
	"github.com/krisalay/expiring-cache/types"
)

/*
Cache defines the PUBLIC API of the bounded expiring cache.
This is a contract that guarantees certain behaviors, without exposing internals.
Eviction, expiration, concurrency and load de-duplication are hidden behind
this interface. Transports (HTTP handlers, CLIs) depend on this, not on the
concrete cache.

All methods are safe for concurrent use.
*/
type Cache[K comparable, V any] interface {

	/*
		GetOrLoad returns the value for key, loading it on a miss.

		BEHAVIOR:
		-------------------
		1. If the key exists in cache and is NOT expired:
		   - Return the value immediately (cache hit, loader not called)

		2. If the key does NOT exist or is expired:
		   - Record a miss
		   - Join the load already running for this key, or start one
		   - Every caller waiting on the same load gets the same result
		   - On success the value is stored; on failure nothing is stored
		     and every waiter gets a *LoadError

		ctx only bounds this caller's wait. Cancelling it never cancels the
		load for the other waiters.
	*/
	GetOrLoad(ctx context.Context, key K, loader types.Loader[K, V]) (V, error)

	/*
		GetIfPresent returns a live value without ever loading.
		The lookup is counted as a hit or a miss.
	*/
	GetIfPresent(key K) (V, bool)

	/*
		Put stores a value directly. Overwriting a live entry emits REPLACED.
		Capacity is enforced before Put returns.
	*/
	Put(key K, value V)

	/*
		Invalidate removes the key, emitting EXPLICIT.

		This operation is idempotent:
		- Invalidating a non-existing key is safe
	*/
	Invalidate(key K)

	/*
		InvalidateAll removes every entry, one EXPLICIT notification each.
		Loads running at the time still answer their waiters, but their
		results are not stored.
	*/
	InvalidateAll()

	// Stats returns the lifetime counters. Invalidation does not reset them.
	Stats() stats.Snapshot

	// Snapshot copies the live entries, most recently used first.
	Snapshot() []types.SnapshotEntry[K]

	// Len returns the number of stored entries.
	Len() int

	// CleanUp removes every expired entry and returns how many it removed.
	CleanUp() int

	/*
		Close gracefully shuts down the cache.

		BEHAVIOR:
		---------
		- Delivers removal notifications that are still queued
		- Stops the notification worker

		WHEN TO CALL:
		-------------
		- Application shutdown
		- Tests cleanup
	*/
	Close()
}
