// Package cache memoises derived query results against the collection revision
// they were computed from.
package cache

import (
	"sync"
	"sync/atomic"
)

// Cache holds values for a single collection revision. A Put for a newer
// revision drops everything stored for older ones.
type Cache[V any] struct {
	mu      sync.RWMutex
	rev     uint64
	entries map[string]V
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the value stored under key for exactly rev.
func (c *Cache[V]) Get(rev uint64, key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero V
	if rev != c.rev {
		c.misses.Add(1)
		return zero, false
	}
	v, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return v, true
}

// Put stores v for (rev, key). Values for a revision older than the cached one are ignored.
func (c *Cache[V]) Put(rev uint64, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case rev < c.rev:
		return
	case rev > c.rev:
		c.rev = rev
		c.entries = make(map[string]V)
	}
	c.entries[key] = v
}

// Invalidate drops every entry.
func (c *Cache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports hit and miss counters.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
