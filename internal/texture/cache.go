package texture

import "sync"

// Cache memoizes encoded thumbnails keyed by path. Failed loads are cached
// too, so a broken file never decodes twice.
type Cache struct {
	mu      sync.RWMutex
	maxSide int
	items   map[string]*cacheEntry
}

type cacheEntry struct {
	data []byte
	err  error
}

// NewCache creates a thumbnail cache producing images capped at maxSide.
func NewCache(maxSide int) *Cache {
	return &Cache{
		maxSide: maxSide,
		items:   make(map[string]*cacheEntry),
	}
}

// Get returns the WebP thumbnail for a texture file, computing it on first
// use.
func (c *Cache) Get(path string) ([]byte, error) {
	c.mu.RLock()
	if entry, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return entry.data, entry.err
	}
	c.mu.RUnlock()

	data, err := ThumbnailWebP(path, c.maxSide)

	c.mu.Lock()
	if entry, ok := c.items[path]; ok {
		c.mu.Unlock()
		return entry.data, entry.err
	}
	c.items[path] = &cacheEntry{data: data, err: err}
	c.mu.Unlock()

	return data, err
}
