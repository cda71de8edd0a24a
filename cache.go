package shapekit

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	desc Desc
	cfg  *Config
}

// Cache memoizes compiled codecs by (description identity, configuration
// identity). Entries are never evicted; concurrent misses for the same key
// share one compilation. Failed compilations are not cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Codec
	group   singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[cacheKey]*Codec{}}
}

// Apply returns the cached codec for (cfg, d), compiling it on first use.
// A nil cfg means Default().
func (c *Cache) Apply(cfg *Config, d Desc) (*Codec, error) {
	if cfg == nil {
		cfg = Default()
	}
	key := cacheKey{desc: d, cfg: cfg}
	c.mu.RLock()
	codec, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return codec, nil
	}
	v, err, _ := c.group.Do(fmt.Sprintf("%p|%p", d, cfg), func() (any, error) {
		c.mu.RLock()
		hit, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return hit, nil
		}
		built, err := compile(cfg, d)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.entries == nil {
			c.entries = map[cacheKey]*Codec{}
		}
		c.entries[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Codec), nil
}

// Len returns the number of cached codecs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every cached codec.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[cacheKey]*Codec{}
	c.mu.Unlock()
}
