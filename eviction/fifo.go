// This file implements FIFO eviction.

package eviction

import "container/list"

// FIFOPolicy evicts in insertion order. Reads and overwrites do not reorder.
type FIFOPolicy[K comparable] struct {
	// queue keeps keys in the order they were inserted; the front is the oldest.
	queue *list.List

	// index finds a key's element so Remove stays O(1).
	index map[K]*list.Element
}

func NewFIFO[K comparable]() *FIFOPolicy[K] {
	return &FIFOPolicy[K]{
		queue: list.New(),
		index: make(map[K]*list.Element),
	}
}

// OnGet is ignored: FIFO does not care about reads.
func (f *FIFOPolicy[K]) OnGet(K) {}

// OnPut queues a key the first time it is seen.
func (f *FIFOPolicy[K]) OnPut(k K) {
	if _, ok := f.index[k]; ok {
		return
	}
	f.index[k] = f.queue.PushBack(k)
}

// Evict pops the oldest key.
func (f *FIFOPolicy[K]) Evict() (K, bool) {
	front := f.queue.Front()
	if front == nil {
		var zero K
		return zero, false
	}
	k := f.queue.Remove(front).(K)
	delete(f.index, k)
	return k, true
}

func (f *FIFOPolicy[K]) Peek() (K, bool) {
	front := f.queue.Front()
	if front == nil {
		var zero K
		return zero, false
	}
	return front.Value.(K), true
}

func (f *FIFOPolicy[K]) Remove(k K) {
	if e, ok := f.index[k]; ok {
		f.queue.Remove(e)
		delete(f.index, k)
	}
}

// Keys returns newest first, matching the LRU orientation.
func (f *FIFOPolicy[K]) Keys() []K {
	keys := make([]K, 0, len(f.index))
	for e := f.queue.Back(); e != nil; e = e.Prev() {
		keys = append(keys, e.Value.(K))
	}
	return keys
}

func (f *FIFOPolicy[K]) Len() int { return len(f.index) }
