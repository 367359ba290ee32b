// Package fifo implements a bounded map that evicts entries in insertion order.
package fifo

// Cache is a map holding at most a fixed number of entries. When full, inserting a new key evicts the key
// inserted longest ago, no matter how often or recently it was read. Updating the value of a key already
// present does not change its position. Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]entry[V]
	queue    []queued[K]
	seq      uint64
}

type entry[V any] struct {
	val V
	seq uint64
}

type queued[K comparable] struct {
	key K
	seq uint64
}

// New returns a Cache holding up to capacity entries. A capacity below 1 is treated as 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	capacity = max(capacity, 1)
	return &Cache[K, V]{capacity: capacity, entries: make(map[K]entry[V], capacity)}
}

// Get returns the value stored for k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	e, ok := c.entries[k]
	return e.val, ok
}

// Contains reports if a value is stored for k.
func (c *Cache[K, V]) Contains(k K) bool {
	_, ok := c.entries[k]
	return ok
}

// Put stores v for k. If storing a new key exceeds the capacity, the oldest key is evicted and returned.
func (c *Cache[K, V]) Put(k K, v V) (evicted K, ok bool) {
	if e, exists := c.entries[k]; exists {
		e.val = v
		c.entries[k] = e
		return evicted, false
	}
	c.seq++
	c.entries[k] = entry[V]{val: v, seq: c.seq}
	c.queue = append(c.queue, queued[K]{key: k, seq: c.seq})

	if len(c.entries) > c.capacity {
		evicted, ok = c.evictOldest()
	}
	if len(c.queue) > 2*c.capacity {
		c.compact()
	}
	return evicted, ok
}

// Remove deletes the value stored for k and returns it.
func (c *Cache[K, V]) Remove(k K) (V, bool) {
	e, ok := c.entries[k]
	if ok {
		delete(c.entries, k)
	}
	return e.val, ok
}

// Len returns the number of entries held.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Cap returns the capacity of the cache.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	clear(c.entries)
	c.queue = c.queue[:0]
}

func (c *Cache[K, V]) evictOldest() (K, bool) {
	for len(c.queue) > 0 {
		q := c.queue[0]
		c.queue = c.queue[1:]
		// Entries removed or re-inserted since they were queued are stale.
		if e, ok := c.entries[q.key]; ok && e.seq == q.seq {
			delete(c.entries, q.key)
			return q.key, true
		}
	}
	var zero K
	return zero, false
}

func (c *Cache[K, V]) compact() {
	live := make([]queued[K], 0, len(c.entries))
	for _, q := range c.queue {
		if e, ok := c.entries[q.key]; ok && e.seq == q.seq {
			live = append(live, q)
		}
	}
	c.queue = live
}
