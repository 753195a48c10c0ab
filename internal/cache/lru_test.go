package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	c := NewLRU[string, int](2)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used.
	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	// Update keeps the size.
	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRU[string, int](10)
	for i := range 5 {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Set("other", 99)

	c.Invalidate(func(k string) bool { return strings.HasPrefix(k, "k") })
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("other")
	assert.True(t, ok)
}

func TestLRU_Disabled(t *testing.T) {
	c := NewLRU[string, int](0)
	assert.Nil(t, c)

	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	c.Invalidate(func(string) bool { return true })
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				k := (g*31 + i) % 64
				if _, ok := c.Get(k); !ok {
					c.Set(k, i)
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
