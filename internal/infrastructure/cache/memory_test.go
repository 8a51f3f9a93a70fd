package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0, nil)

	_, found := c.Get("a")
	assert.False(t, found)

	c.Set("a", 1, time.Minute)
	c.Set("b", "two", time.Minute)
	assert.Equal(t, 2, c.ItemCount())

	v, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, found = c.Get("a")
	assert.False(t, found)

	c.Flush()
	assert.Equal(t, 0, c.ItemCount())
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0, nil)
	c.Set("short", true, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, found := c.Get("short")
	assert.False(t, found)
}

func TestMemoryCacheEvictHook(t *testing.T) {
	var (
		mu      sync.Mutex
		evicted []string
	)
	c := NewMemoryCache(time.Minute, 0, func(key string, _ interface{}) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, key)
	})

	c.Set("s1", "x", time.Minute)
	c.Delete("s1")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"s1"}, evicted)
}
