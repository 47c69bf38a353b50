package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krisalay/expiring-cache/expiration"
	"github.com/krisalay/expiring-cache/types"
)

// ErrLoaderPanic marks a load that failed because the loader panicked.
var ErrLoaderPanic = errors.New("loader panicked")

// Notifier receives removal notifications. It must not block.
type Notifier[K comparable, V any] interface {
	Notify(types.RemovalNotification[K, V])
}

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- When data is expired
- How timestamps move on reads/writes
- How a load is timed and reported
- What a removal means for metrics and listeners

It does NOT:
- Store data
- Handle locking
- Decide eviction order
- De-duplicate loads
*/
type CacheEngine[K comparable, V any] struct {

	// Expiration decides when an entry is too old to be served.
	Expiration expiration.Strategy

	// Clock stamps writes and reads and is the "now" expiry is judged against.
	Clock types.Clock

	// Metrics receives every hit, miss, load, eviction and expiry.
	Metrics types.Metrics

	// Notifier forwards removals to the user's listener. Nil means nobody listens.
	Notifier Notifier[K, V]
}

/*
NewCacheEngine creates a CacheEngine.
*/
func NewCacheEngine[K comparable, V any](
	exp expiration.Strategy,
	clock types.Clock,
	metrics types.Metrics,
	notifier Notifier[K, V],
) *CacheEngine[K, V] {

	// Ensure clock and metrics are always non-nil
	if clock == nil {
		clock = types.SystemClock{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine[K, V]{
		Expiration: exp,
		Clock:      clock,
		Metrics:    metrics,
		Notifier:   notifier,
	}
}

// Now reads the engine clock.
func (e *CacheEngine[K, V]) Now() time.Time {
	return e.Clock.Now()
}

/*
IsExpired checks whether a cache entry is expired right now.
Returns false if no expiration strategy is configured.
*/
func (e *CacheEngine[K, V]) IsExpired(ent *types.Entry[K, V]) bool {
	return e.IsExpiredAt(ent, e.Now())
}

// IsExpiredAt is IsExpired against a caller-supplied now, for sweeps that
// should judge every entry at the same instant.
func (e *CacheEngine[K, V]) IsExpiredAt(ent *types.Entry[K, V], now time.Time) bool {
	return e.Expiration != nil && e.Expiration.IsExpired(&ent.Timestamps, now)
}

// OnRead is called every time the cache serves a hit.
func (e *CacheEngine[K, V]) OnRead(ent *types.Entry[K, V]) {
	if e.Expiration != nil {
		e.Expiration.OnAccess(&ent.Timestamps, e.Now())
	}
}

// OnWrite is called whenever an entry is stored or overwritten.
func (e *CacheEngine[K, V]) OnWrite(ent *types.Entry[K, V]) {
	now := e.Now()
	if e.Expiration != nil {
		e.Expiration.OnWrite(&ent.Timestamps, now)
		return
	}
	ent.WrittenAt = now
	ent.AccessedAt = now
}

/*
Load runs the loader once and reports the outcome.

Load time is measured on the wall clock (with its monotonic reading) rather
than the engine clock, so a frozen test clock still yields real durations.
A panic inside the loader is turned into an error wrapping ErrLoaderPanic.
*/
func (e *CacheEngine[K, V]) Load(ctx context.Context, key K, loader types.Loader[K, V]) (V, error) {
	start := time.Now()
	val, err := safeLoad(ctx, key, loader)
	elapsed := time.Since(start)

	if err != nil {
		e.Metrics.LoadFailure(elapsed)
		var zero V
		return zero, err
	}
	e.Metrics.LoadSuccess(elapsed)
	return val, nil
}

func safeLoad[K comparable, V any](ctx context.Context, key K, loader types.Loader[K, V]) (val V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return loader.Load(ctx, key)
}

/*
Removed is called once for every entry that leaves the cache.

SIZE removals count as evictions (with the entry's weight), EXPIRED removals
as expirations. EXPLICIT and REPLACED touch no counter. Every cause is
forwarded to the notifier.
*/
func (e *CacheEngine[K, V]) Removed(ent *types.Entry[K, V], cause types.RemovalCause) {
	switch cause {
	case types.CauseSize:
		e.Metrics.Eviction(ent.Weight)
	case types.CauseExpired:
		e.Metrics.Expire()
	}

	if e.Notifier != nil {
		e.Notifier.Notify(types.RemovalNotification[K, V]{
			Key:   ent.Key,
			Value: ent.Value,
			Cause: cause,
		})
	}
}
