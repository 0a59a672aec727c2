// internal/agent/intent/cache.go
package intent

import "sync"

// Cache memoizes classification results keyed by normalized message text.
// It is bounded: when the map reaches capacity the whole thing is flushed
// rather than evicting entries one by one, which keeps Put O(1) and is
// plenty for the short repeated commands this service sees.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]Intent
}

const DefaultCacheSize = 1024

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]Intent, maxSize),
	}
}

func (c *Cache) Get(key string) (Intent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.entries[key]
	return it, ok
}

func (c *Cache) Put(key string, it Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string]Intent, c.maxSize)
	}
	c.entries[key] = it
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
