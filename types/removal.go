package types

// RemovalCause tells a removal listener why an entry left the cache.
type RemovalCause string

const (
	// CauseExplicit: the caller invalidated the key (or everything).
	CauseExplicit RemovalCause = "EXPLICIT"

	// CauseSize: the entry was the eviction victim of an over-capacity insert.
	CauseSize RemovalCause = "SIZE"

	// CauseExpired: the entry outlived its TTL.
	CauseExpired RemovalCause = "EXPIRED"

	// CauseReplaced: a write for the same key overwrote the entry.
	CauseReplaced RemovalCause = "REPLACED"
)

// WasEvicted reports whether the cache removed the entry on its own.
func (c RemovalCause) WasEvicted() bool {
	return c == CauseSize || c == CauseExpired
}

func (c RemovalCause) String() string { return string(c) }

// RemovalListener is invoked with every entry that leaves the cache.
// It runs off the mutating call path and may be slow; a panic is recovered.
type RemovalListener[K comparable, V any] func(key K, value V, cause RemovalCause)

// RemovalNotification is one queued call to a RemovalListener.
type RemovalNotification[K comparable, V any] struct {
	Key   K
	Value V
	Cause RemovalCause
}
