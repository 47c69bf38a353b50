// Package notify delivers removal notifications off the cache's mutating path.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/krisalay/expiring-cache/types"
)

/*
Dispatcher hands removal notifications to a listener on a background worker.

The cache calls Notify while holding its lock, so Notify must never wait on the
listener:
- the queue is unbounded, so Notify never blocks and never drops
- one worker delivers in enqueue order
- a panicking listener is recovered and logged; delivery continues

A slow listener therefore only delays later notifications, never evictions.
*/
type Dispatcher[K comparable, V any] struct {
	listener types.RemovalListener[K, V]
	log      *logrus.Entry

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []types.RemovalNotification[K, V]
	busy   bool // worker is delivering a batch
	closed bool

	done chan struct{}
}

// NewDispatcher starts the delivery worker.
func NewDispatcher[K comparable, V any](listener types.RemovalListener[K, V], log *logrus.Entry) *Dispatcher[K, V] {
	d := &Dispatcher[K, V]{
		listener: listener,
		log:      log,
		done:     make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)

	go d.worker()
	return d
}

// Notify queues n. Notifications arriving after Close are discarded.
func (d *Dispatcher[K, V]) Notify(n types.RemovalNotification[K, V]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.queue = append(d.queue, n)
	d.cond.Broadcast()
}

// Pending returns how many notifications are queued or being delivered.
func (d *Dispatcher[K, V]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.queue)
	if d.busy {
		n++
	}
	return n
}

// Flush blocks until everything queued so far has been delivered.
// Calling it from the listener deadlocks.
func (d *Dispatcher[K, V]) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) > 0 || d.busy {
		d.cond.Wait()
	}
}

/*
Close shuts the dispatcher down gracefully.
1. Stop accepting notifications
2. Let the worker deliver what is already queued
3. Wait for it to exit

Close is idempotent. Like Flush, it must not be called from the listener.
*/
func (d *Dispatcher[K, V]) Close() {
	d.mu.Lock()
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher[K, V]) worker() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		batch := d.queue
		d.queue = nil
		d.busy = true
		d.mu.Unlock()

		for _, n := range batch {
			d.deliver(n)
		}

		d.mu.Lock()
		d.busy = false
		d.cond.Broadcast()
		d.mu.Unlock()
	}
}

func (d *Dispatcher[K, V]) deliver(n types.RemovalNotification[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{
				"key":   n.Key,
				"cause": n.Cause,
				"panic": r,
			}).Warn("removal listener panicked")
		}
	}()
	d.listener(n.Key, n.Value, n.Cause)
}
