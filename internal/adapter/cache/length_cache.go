package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

const defaultMaxSize = 1 << 18

// LengthCache keeps compressed lengths in memory, keyed by text hash.
// Entries are evicted in insertion order once maxSize is reached.
type LengthCache struct {
	mu      sync.RWMutex
	entries map[string]int
	order   []string
	maxSize int
}

func NewLengthCache(maxSize int) *LengthCache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &LengthCache{
		entries: make(map[string]int),
		maxSize: maxSize,
	}
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16])
}

func (c *LengthCache) Get(text string) (int, bool) {
	key := cacheKey(text)

	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.entries[key]
	return n, ok
}

func (c *LengthCache) Put(text string, size int) {
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = size
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = size
	c.order = append(c.order, key)
}

func (c *LengthCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *LengthCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]int)
	c.order = c.order[:0]
}

func (c *LengthCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}
