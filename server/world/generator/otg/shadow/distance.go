package shadow

import "github.com/brentp/intintmap"

// distanceCache memoises the outcome of structure searches per chunk. A value of 0 or higher is the ring
// distance at which a structure start was found within its avoidance distance. A negative value v means no
// such start exists within a radius of -v-1. Entries are evicted in insertion order.
type distanceCache struct {
	m    *intintmap.Map
	ring []int64
	next int
	full bool
}

func newDistanceCache(capacity int) *distanceCache {
	return &distanceCache{m: intintmap.New(capacity, 0.6), ring: make([]int64, capacity)}
}

func (c *distanceCache) get(key int64) (int64, bool) {
	return c.m.Get(key)
}

// put stores v for key. Updating a key keeps its position in the eviction order.
func (c *distanceCache) put(key, v int64) {
	if _, ok := c.m.Get(key); ok {
		c.m.Put(key, v)
		return
	}
	if c.full {
		c.m.Del(c.ring[c.next])
	}
	c.ring[c.next] = key
	c.m.Put(key, v)
	if c.next++; c.next == len(c.ring) {
		c.next, c.full = 0, true
	}
}

func (c *distanceCache) len() int {
	return c.m.Size()
}
