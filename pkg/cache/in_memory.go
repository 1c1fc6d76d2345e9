package cache

import (
	"bytes"
	"io"
	"sync"

	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

type InMemoryCache struct {
	mu    sync.RWMutex
	cache map[screenshelf.CacheKey][]byte
}

var _ screenshelf.Cache = (*InMemoryCache)(nil)

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		cache: make(map[screenshelf.CacheKey][]byte),
	}
}

func (c *InMemoryCache) Open(key screenshelf.CacheKey) (io.ReadCloser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.cache[key]
	if !ok {
		return nil, screenshelf.ErrCacheMiss
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *InMemoryCache) Check(key screenshelf.CacheKey) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.cache[key]; !ok {
		return screenshelf.ErrCacheMiss
	}
	return nil
}

func (c *InMemoryCache) Write(key screenshelf.CacheKey, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = data
	return nil
}

func (c *InMemoryCache) Remove(key screenshelf.CacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Len returns the number of cached entries.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}
