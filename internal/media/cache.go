package media

import (
	"sync"
)

// ProbeCache caches ffprobe results to avoid probing the same file twice.
type ProbeCache struct {
	cache map[string]*VideoInfo
	mu    sync.RWMutex
}

// NewProbeCache creates a new probe cache.
func NewProbeCache() *ProbeCache {
	return &ProbeCache{
		cache: make(map[string]*VideoInfo),
	}
}

// Get retrieves cached info. The returned value is a copy.
func (c *ProbeCache) Get(path string) (VideoInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.cache[path]
	if !ok {
		return VideoInfo{}, false
	}
	return *info, true
}

// Set stores info in the cache.
func (c *ProbeCache) Set(path string, info VideoInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[path] = &info
}

// Remove drops a path, used when a temp upload is deleted.
func (c *ProbeCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, path)
}
