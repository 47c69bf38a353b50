package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/krisalay/expiring-cache/api"
	"github.com/krisalay/expiring-cache/engine"
	evict "github.com/krisalay/expiring-cache/eviction"
	"github.com/krisalay/expiring-cache/expiration"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/notify"
	"github.com/krisalay/expiring-cache/stats"
	"github.com/krisalay/expiring-cache/types"
)

// call is one in-flight load that any number of callers may wait on.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error

	// detached is set when the key was invalidated or overwritten while the
	// load ran. Waiters still get the result; the cache does not store it.
	detached bool
}

/*
BoundedCache is the main cache implementation.
This struct is the orchestrator that connects:
- storage (one map, one lock)
- eviction order
- the in-flight load registry
- the engine (expiration, clock, metrics, removal routing)

One mutex guards the map, the eviction order and the in-flight registry.
Loaders and removal listeners never run under it.
*/
type BoundedCache[K comparable, V any] struct {
	mu sync.Mutex

	// entries holds every stored entry, expired ones included until someone
	// notices them.
	entries map[K]*types.Entry[K, V]

	// eviction decides which key leaves when the cache is over capacity.
	eviction evict.Policy[K]

	// expiryOrder keeps keys oldest-timestamp last: write order, or access
	// order when reads extend the TTL. Its tail is the first key to expire.
	expiryOrder *evict.LRUPolicy[K]
	touchOnRead bool

	// inflight maps a key to the load currently running for it.
	inflight map[K]*call[V]

	// engine contains the "rules" of the cache: TTL, clock, metrics, notifications.
	engine *engine.CacheEngine[K, V]

	counter    *stats.Counter
	dispatcher *notify.Dispatcher[K, V] // nil without a listener

	// maxSize is the maximum number of entries in the cache.
	maxSize int

	log *logrus.Entry
}

var _ api.Cache[string, any] = (*BoundedCache[string, any])(nil)

// New validates cfg and builds a cache. Invalid settings return an error
// matching ErrInvalidConfiguration and no cache.
func New[K comparable, V any](cfg Config[K, V]) (*BoundedCache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	exp, err := expiration.NewStrategy(cfg.Expiry, cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	policy, err := evict.NewEvictionPolicy[K](cfg.EvictionPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.WithComponent("cache")
	}

	counter := stats.NewCounter()
	var metrics types.Metrics = counter
	if cfg.Metrics != nil {
		metrics = types.MultiMetrics{counter, cfg.Metrics}
	}

	c := &BoundedCache[K, V]{
		entries:  make(map[K]*types.Entry[K, V]),
		eviction:    policy,
		expiryOrder: evict.NewLRU[K](),
		touchOnRead: cfg.Expiry == expiration.AfterAccess,
		inflight:    make(map[K]*call[V]),
		counter:     counter,
		maxSize:     cfg.MaxSize,
		log:         log,
	}

	// Only hand the engine a notifier when someone listens, so the
	// interface stays nil otherwise.
	var notifier engine.Notifier[K, V]
	if cfg.RemovalListener != nil {
		c.dispatcher = notify.NewDispatcher[K, V](cfg.RemovalListener, log)
		notifier = c.dispatcher
	}
	c.engine = engine.NewCacheEngine[K, V](exp, cfg.Clock, metrics, notifier)

	return c, nil
}

/*
GetOrLoad retrieves a value from the cache, loading it on a miss.
*/
func (c *BoundedCache[K, V]) GetOrLoad(ctx context.Context, key K, loader types.Loader[K, V]) (V, error) {
	c.mu.Lock()

	if v, ok := c.lookupLocked(key); ok {
		c.mu.Unlock()
		return v, nil
	}

	/*
		Single-flight: if 100 goroutines miss on the same key, only the first
		one registers a call and starts the loader. The rest find the call
		in the registry and wait on it.

		The load runs on its own goroutine with a context that keeps the
		caller's values but not its cancellation, so the caller that
		happened to start it can walk away without failing the others.
	*/
	cl, ok := c.inflight[key]
	if !ok {
		cl = &call[V]{done: make(chan struct{})}
		c.inflight[key] = cl
		go c.load(context.WithoutCancel(ctx), key, cl, loader)
	}
	c.mu.Unlock()

	select {
	case <-cl.done:
		return cl.val, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// GetIfPresent is a lookup that never loads.
func (c *BoundedCache[K, V]) GetIfPresent(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(key)
}

/*
Put stores a value directly, replacing any live entry for the key.

A load running for the key is detached: its waiters still get what it
loads, but the value written here is the one the cache keeps.
*/
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detachLocked(key)
	c.storeLocked(key, value)
}

/*
Invalidate deletes a key from the cache immediately.

This operation is idempotent:
- Invalidating a non-existing key is safe
*/
func (c *BoundedCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detachLocked(key)
	if ent, ok := c.entries[key]; ok {
		c.removeLocked(ent, types.CauseExplicit)
	}
}

/*
InvalidateAll clears the cache in one critical section.

Every load in flight is detached first, so no value computed before the clear
can be stored after it. A GetOrLoad that arrives later misses and loads anew.
*/
func (c *BoundedCache[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cl := range c.inflight {
		cl.detached = true
	}
	clear(c.inflight)

	for _, key := range c.eviction.Keys() {
		c.removeLocked(c.entries[key], types.CauseExplicit)
	}
}

// Stats returns the lifetime counters.
func (c *BoundedCache[K, V]) Stats() stats.Snapshot {
	return c.counter.Snapshot()
}

/*
Snapshot copies every live entry, most recently used first.

Values are rendered with fmt.Sprint, so types with a String method control
their own rendering. The returned slice shares nothing with the cache.
Expired entries are skipped but left for the next access or CleanUp to remove.
*/
func (c *BoundedCache[K, V]) Snapshot() []types.SnapshotEntry[K] {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.engine.Now()
	out := make([]types.SnapshotEntry[K], 0, len(c.entries))
	for _, key := range c.eviction.Keys() {
		ent := c.entries[key]
		if c.engine.IsExpiredAt(ent, now) {
			continue
		}
		out = append(out, types.SnapshotEntry[K]{
			Key:       key,
			Value:     fmt.Sprint(ent.Value),
			WrittenAt: ent.WrittenAt,
		})
	}
	return out
}

// Len returns the number of stored entries, including expired ones not yet removed.
func (c *BoundedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanUp removes every expired entry with cause EXPIRED.
func (c *BoundedCache[K, V]) CleanUp() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.engine.Now()
	removed := 0
	for _, key := range c.eviction.Keys() {
		if ent := c.entries[key]; c.engine.IsExpiredAt(ent, now) {
			c.removeLocked(ent, types.CauseExpired)
			removed++
		}
	}
	return removed
}

// Flush waits until every removal notification queued so far has been delivered.
// It must not be called from the removal listener.
func (c *BoundedCache[K, V]) Flush() {
	if c.dispatcher != nil {
		c.dispatcher.Flush()
	}
}

/*
Close gracefully shuts down the cache.
Queued removal notifications are delivered before it returns,
so it must not be called from the removal listener.
*/
func (c *BoundedCache[K, V]) Close() {
	if c.dispatcher != nil {
		c.dispatcher.Close()
	}
}

// load runs on its own goroutine and completes cl exactly once.
func (c *BoundedCache[K, V]) load(ctx context.Context, key K, cl *call[V], loader types.Loader[K, V]) {
	val, err := c.engine.Load(ctx, key, loader)

	c.mu.Lock()
	if c.inflight[key] == cl {
		delete(c.inflight, key)
	}
	if err != nil {
		cl.err = &LoadError{Key: key, Err: err}
		c.log.WithError(err).WithField("key", key).Debug("load failed")
	} else {
		cl.val = val
		if !cl.detached {
			c.storeLocked(key, val)
		}
	}
	c.mu.Unlock()

	close(cl.done)
}

/*
lookupLocked is the read path shared by GetOrLoad and GetIfPresent.
An expired entry found here is removed before the miss is recorded.
*/
func (c *BoundedCache[K, V]) lookupLocked(key K) (V, bool) {
	ent, ok := c.entries[key]
	if ok && c.engine.IsExpired(ent) {
		c.removeLocked(ent, types.CauseExpired)
		ok = false
	}
	if !ok {
		c.engine.Metrics.Miss()
		var zero V
		return zero, false
	}

	c.engine.Metrics.Hit()
	c.engine.OnRead(ent)
	c.eviction.OnGet(key)
	if c.touchOnRead {
		c.expiryOrder.OnGet(key)
	}
	return ent.Value, true
}

/*
storeLocked writes a fresh entry and then restores the capacity invariant.

The new entry briefly makes the map one over MaxSize; evictLocked brings it
back before the lock is released, so no caller ever observes the overshoot.
*/
func (c *BoundedCache[K, V]) storeLocked(key K, value V) {
	if old, ok := c.entries[key]; ok {
		cause := types.CauseReplaced
		if c.engine.IsExpired(old) {
			cause = types.CauseExpired
		}
		c.engine.Removed(old, cause)
	}

	ent := types.NewEntry(key, value)
	c.engine.OnWrite(ent)
	c.entries[key] = ent
	c.eviction.OnPut(key)
	c.expiryOrder.OnPut(key)

	c.evictLocked()
}

/*
evictLocked brings the cache back to MaxSize entries.

Expired entries give up their slots first, oldest first, with cause EXPIRED.
Only when no expired entry is left does the policy pick live victims, with
cause SIZE. A live entry is never evicted while a dead one holds a slot.
*/
func (c *BoundedCache[K, V]) evictLocked() {
	if len(c.entries) <= c.maxSize {
		return
	}

	now := c.engine.Now()
	for len(c.entries) > c.maxSize {
		key, ok := c.expiryOrder.Peek()
		if !ok {
			break
		}
		ent := c.entries[key]
		if !c.engine.IsExpiredAt(ent, now) {
			break
		}
		c.removeLocked(ent, types.CauseExpired)
	}

	for len(c.entries) > c.maxSize {
		key, ok := c.eviction.Evict()
		if !ok {
			return
		}
		ent := c.entries[key]
		delete(c.entries, key)
		c.expiryOrder.Remove(key)

		c.engine.Removed(ent, types.CauseSize)
		c.log.WithFields(logrus.Fields{"key": key, "cause": types.CauseSize}).Debug("entry evicted")
	}
}

func (c *BoundedCache[K, V]) removeLocked(ent *types.Entry[K, V], cause types.RemovalCause) {
	delete(c.entries, ent.Key)
	c.eviction.Remove(ent.Key)
	c.expiryOrder.Remove(ent.Key)
	c.engine.Removed(ent, cause)
	c.log.WithFields(logrus.Fields{"key": ent.Key, "cause": cause}).Debug("entry removed")
}

func (c *BoundedCache[K, V]) detachLocked(key K) {
	if cl, ok := c.inflight[key]; ok {
		cl.detached = true
		delete(c.inflight, key)
	}
}
