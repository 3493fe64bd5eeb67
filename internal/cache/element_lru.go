package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/voltpath/stationfinder/internal/models"
)

// LRUCacheEntry wraps the cached elements with an expiry
type LRUCacheEntry struct {
	Elements  []models.Element
	ExpiresAt time.Time
}

// ElementLRU keeps recent Overpass responses in memory
type ElementLRU struct {
	lru    *lru.Cache[string, *LRUCacheEntry]
	ttl    time.Duration
	clock  clock
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewElementLRU(size int, ttl time.Duration) (*ElementLRU, error) {
	lruCache, err := lru.New[string, *LRUCacheEntry](size)
	if err != nil {
		return nil, err
	}

	return &ElementLRU{
		lru:   lruCache,
		ttl:   ttl,
		clock: systemClock{},
	}, nil
}

func (c *ElementLRU) Get(key string) ([]models.Element, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if c.clock.Now().After(entry.ExpiresAt) {
		c.lru.Remove(key)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry.Elements, true
}

func (c *ElementLRU) Add(key string, elements []models.Element) {
	c.lru.Add(key, &LRUCacheEntry{
		Elements:  elements,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

func (c *ElementLRU) Len() int {
	return c.lru.Len()
}

// Clear removes all entries
func (c *ElementLRU) Clear() {
	c.lru.Purge()
}

// Stats returns hit and miss counters
func (c *ElementLRU) Stats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":   c.hits.Load(),
		"lru_misses": c.misses.Load(),
	}
}
