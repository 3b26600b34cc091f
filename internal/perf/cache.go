// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package perf wraps the privacy engine with a content-fingerprint result
// cache and batch processing for repeated-file workloads.
package perf

import (
	"fmt"
	"sync"
	"time"
)

// CacheTTL is how long a cached privacy result stays valid. The reference
// behavior fixes this at one hour. Tests override it to exercise expiry
// without real sleeps.
var CacheTTL = time.Hour

// evictFraction is the share of entries dropped, oldest first, when the
// cache is full.
const evictFraction = 0.10

// Operation tags which engine call produced a cached result.
type Operation string

const (
	// OpExclusion caches ShouldExcludeFile verdicts.
	OpExclusion Operation = "exclude"

	// OpFilter caches FilterContent output.
	OpFilter Operation = "filter"
)

// Result is one cached privacy outcome: an exclusion verdict or redacted
// content, depending on the operation.
type Result struct {
	Op       Operation
	Excluded bool
	Content  string
}

// Fingerprint computes a cheap rolling hash (FNV-1a) of content. It
// disambiguates cache keys only and has no security properties.
func Fingerprint(content string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	hash := uint64(offset64)
	for i := 0; i < len(content); i++ {
		hash ^= uint64(content[i])
		hash *= prime64
	}
	return hash
}

// Key builds the cache key for an operation on a file's content.
func Key(op Operation, path string, fingerprint uint64) string {
	return fmt.Sprintf("%s:%s:%016x", op, path, fingerprint)
}

// entry is one cached result with bookkeeping for TTL and eviction.
type entry struct {
	result      Result
	fingerprint uint64
	createdAt   time.Time
	size        int
}

// Stats holds cache counters.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
	Entries   int
	Bytes     int
}

// Cache is a capacity-bounded result cache with a fixed TTL. Expired
// entries are treated as absent and purged lazily on the next lookup.
// When the cache is full the oldest tenth of entries is evicted.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	hits     int
	misses   int
	evicted  int
}

// NewCache returns a cache bounded to capacity entries. A non-positive
// capacity falls back to 1000.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Cache{
		entries:  make(map[string]entry),
		capacity: capacity,
	}
}

// Get returns the cached result for key. An entry older than the TTL is
// never returned: it counts as a miss and is purged.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return Result{}, false
	}
	if time.Since(e.createdAt) > CacheTTL {
		delete(c.entries, key)
		c.misses++
		return Result{}, false
	}

	c.hits++
	return e.result, true
}

// Put stores a result under key, evicting the oldest tenth of entries
// first if the cache is full.
func (c *Cache) Put(key string, fingerprint uint64, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	c.entries[key] = entry{
		result:      result,
		fingerprint: fingerprint,
		createdAt:   time.Now(),
		size:        len(key) + len(result.Content),
	}
}

// evictOldest removes the oldest 10% of entries (at least one) by creation
// time. Caller holds the lock.
func (c *Cache) evictOldest() {
	n := int(float64(len(c.entries)) * evictFraction)
	if n < 1 {
		n = 1
	}

	for ; n > 0; n-- {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for key, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = e.createdAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
		c.evicted++
	}
}

// Resize raises or lowers the capacity bound. Shrinking below the current
// entry count evicts oldest entries to fit.
func (c *Cache) Resize(capacity int) {
	if capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = capacity
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// Clear discards every cached entry. Counters are preserved.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns a snapshot of the cache counters and memory accounting.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	bytes := 0
	for _, e := range c.entries {
		bytes += e.size
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evicted,
		Entries:   len(c.entries),
		Bytes:     bytes,
	}
}
