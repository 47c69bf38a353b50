package types

import "time"

// Timestamps carries the clock readings an expiration strategy works from.
type Timestamps struct {
	WrittenAt  time.Time
	AccessedAt time.Time
}

/*
Entry is one cached key/value pair.

Entries are owned by the cache and only ever mutated while the cache lock is
held. Value and WrittenAt are replaced together, so a reader never sees a value
paired with another write's timestamp.
*/
type Entry[K comparable, V any] struct {
	Key   K
	Value V

	// Weight is the entry's share of the capacity. Every entry weighs 1.
	Weight int64

	Timestamps
}

// NewEntry creates an entry with unit weight. Timestamps are stamped by the engine.
func NewEntry[K comparable, V any](key K, value V) *Entry[K, V] {
	return &Entry[K, V]{Key: key, Value: value, Weight: 1}
}

// SnapshotEntry is a detached, printable copy of a live entry.
type SnapshotEntry[K comparable] struct {
	Key       K         `json:"key"`
	Value     string    `json:"value"`
	WrittenAt time.Time `json:"written_at"`
}
