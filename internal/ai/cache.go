package ai

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/mechsight/triage/internal/model"
)

// DefaultCacheSize bounds the response cache.
const DefaultCacheSize = 1000

// Cache is a bounded map of analyses with first-in-first-out eviction.
// Eviction follows insertion order, not recency of use — deliberately not
// an LRU, a simplicity trade-off to preserve unless requirements change.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*Analysis
	order   []string // insertion order, oldest first
	hits    int
	misses  int
}

// NewCache creates a Cache holding at most max entries; max <= 0 uses the
// default.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{max: max, entries: make(map[string]*Analysis)}
}

// CacheKey hashes the event fields that go into the prompt, so identical
// event content reuses a prior analysis regardless of record id.
func CacheKey(event model.Event) string {
	desc := event.Description
	if len(desc) > 100 {
		desc = desc[:100]
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%s|%s|%d",
		desc, event.Severity, event.ErrorCode, event.Joint, event.RecurrenceCount)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached analysis for key, if any.
func (c *Cache) Get(key string) (*Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Put stores an analysis, evicting the oldest entry when full. Inserting
// an existing key overwrites the value without changing its position.
func (c *Cache) Put(key string, a *Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = a
		return
	}

	if len(c.entries) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = a
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports hit/miss counts and current size.
type Stats struct {
	Hits    int     `json:"cache_hits"`
	Misses  int     `json:"cache_misses"`
	HitRate float64 `json:"hit_rate"` // percent
	Size    int     `json:"cache_size"`
}

// CacheStats returns a snapshot of cache effectiveness.
func (c *Cache) CacheStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}
