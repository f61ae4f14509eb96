package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_RevisionKeyed(t *testing.T) {
	c := New[int]()

	c.Put(1, "stats", 10)
	v, ok := c.Get(1, "stats")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = c.Get(2, "stats")
	assert.False(t, ok, "newer revision must miss")

	c.Put(2, "stats", 20)
	_, ok = c.Get(1, "stats")
	assert.False(t, ok, "older revision is gone once a newer one is stored")
	assert.Equal(t, 1, c.Len())

	c.Put(1, "late", 99)
	_, ok = c.Get(1, "late")
	assert.False(t, ok, "stale writes are dropped")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(3), misses)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string]()
	c.Put(3, "a", "x")
	c.Put(3, "b", "y")
	c.Invalidate()

	assert.Zero(t, c.Len())
	_, ok := c.Get(3, "a")
	assert.False(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%4)
				c.Put(uint64(j/10), key, i)
				c.Get(uint64(j/10), key)
				if j%25 == 0 {
					c.Invalidate()
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 4)
}
