// This file implements LRU eviction.

package eviction

// lruNode represents ONE key inside the LRU structure. We use a doubly-linked list to track usage order.
type lruNode[K comparable] struct {
	key K

	// prev points toward the most recently used end
	prev *lruNode[K]

	// next points toward the least recently used end
	next *lruNode[K]
}

// LRUPolicy is the concrete implementation of the LRU eviction policy.
//
// Every touch moves a key to the head, so with sequential calls the tail is
// always the key whose last read or write is oldest, and two keys never share a
// position. Keys that were never read after insertion leave in insertion order.
type LRUPolicy[K comparable] struct {
	// nodes maps cache keys to their list nodes for O(1) moves.
	nodes map[K]*lruNode[K]

	// head points to the MOST recently used key
	head *lruNode[K]

	// tail points to the LEAST recently used key
	tail *lruNode[K]
}

func NewLRU[K comparable]() *LRUPolicy[K] {
	return &LRUPolicy[K]{nodes: make(map[K]*lruNode[K])}
}

// OnGet marks a key as most recently used.
func (l *LRUPolicy[K]) OnGet(k K) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
	}
}

// OnPut tracks a new key at the front. An overwrite counts as an access.
func (l *LRUPolicy[K]) OnPut(k K) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
		return
	}
	n := &lruNode[K]{key: k}
	l.nodes[k] = n
	l.addFront(n)
}

// Evict removes the LEAST recently used key, which is always at the tail.
func (l *LRUPolicy[K]) Evict() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}

	k := l.tail.key
	l.remove(l.tail)
	delete(l.nodes, k)
	return k, true
}

// Peek returns the tail key without moving or removing it.
func (l *LRUPolicy[K]) Peek() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// Remove forgets a key that left the cache some other way.
func (l *LRUPolicy[K]) Remove(k K) {
	if n, ok := l.nodes[k]; ok {
		l.remove(n)
		delete(l.nodes, k)
	}
}

// Keys walks from head to tail: most recently used first.
func (l *LRUPolicy[K]) Keys() []K {
	keys := make([]K, 0, len(l.nodes))
	for n := l.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (l *LRUPolicy[K]) Len() int { return len(l.nodes) }

func (l *LRUPolicy[K]) addFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n

	if l.tail == nil {
		l.tail = n
	}
}

// remove unlinks a node, fixing head and tail when it sat at either end.
func (l *LRUPolicy[K]) remove(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *LRUPolicy[K]) moveToFront(n *lruNode[K]) {
	if l.head == n {
		return
	}
	l.remove(n)
	l.addFront(n)
}
