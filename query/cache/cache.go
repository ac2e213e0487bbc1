// Package cache provides query result caching functionality.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// Cache stores query results under a key. Entries carry tags, normally the
// models a statement reads, so writes can invalidate every entry that
// depends on a model.
type Cache interface {
	// Get retrieves a value from the cache
	Get(key string) (any, bool)
	// Set stores a value. A zero ttl uses the cache default; a negative ttl
	// never expires.
	Set(key string, value any, ttl time.Duration, tags ...string)
	// Invalidate removes every entry carrying tag
	Invalidate(tag string)
	// Clear removes all entries from the cache
	Clear()
	// Stats returns cache statistics
	Stats() Stats
}

// Stats represents cache statistics
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

type entry struct {
	value     any
	expiresAt time.Time
	tags      []string
}

// LRUCache is a size-bounded Cache with per-entry TTL. It is safe for
// concurrent use.
type LRUCache struct {
	mu         sync.Mutex
	lru        *lru.Cache
	tags       map[string]map[string]struct{}
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
	stats      Stats
	evicting   bool
}

// NewLRUCache creates a cache holding at most maxSize entries.
func NewLRUCache(maxSize int, defaultTTL time.Duration) *LRUCache {
	c := &LRUCache{
		lru:        lru.New(maxSize),
		tags:       make(map[string]map[string]struct{}),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	c.lru.OnEvicted = c.onEvicted
	return c
}

// onEvicted runs with c.mu held.
func (c *LRUCache) onEvicted(k lru.Key, v any) {
	key := k.(string)
	for _, tag := range v.(*entry).tags {
		if keys := c.tags[tag]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
	if !c.evicting {
		c.stats.Evictions++
	}
}

// Get retrieves a value from the cache
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	e := v.(*entry)
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(key)
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.value, true
}

// Set stores a value in the cache
func (c *LRUCache) Set(key string, value any, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	e := &entry{value: value, tags: append([]string(nil), tags...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.remove(key)
	c.lru.Add(key, e)
	for _, tag := range e.tags {
		if c.tags[tag] == nil {
			c.tags[tag] = make(map[string]struct{})
		}
		c.tags[tag][key] = struct{}{}
	}
}

// Invalidate removes every entry carrying tag
func (c *LRUCache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tags[tag] {
		c.remove(key)
	}
}

// Clear removes all entries from the cache
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evicting = true
	c.lru.Clear()
	c.evicting = false
	c.tags = make(map[string]map[string]struct{})
}

// Stats returns cache statistics
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.lru.Len()
	s.MaxSize = c.maxSize
	return s
}

// remove drops key without counting it as an eviction.
func (c *LRUCache) remove(key string) {
	c.evicting = true
	c.lru.Remove(key)
	c.evicting = false
}

// Key derives a cache key from a compiled statement.
func Key(sql string, args []any) string {
	h := sha256.New()
	h.Write([]byte(sql))
	for _, arg := range args {
		fmt.Fprintf(h, "\x00%T:%v", arg, arg)
	}
	return hex.EncodeToString(h.Sum(nil))
}
