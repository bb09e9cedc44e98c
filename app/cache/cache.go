package cache

import (
	"fmt"
	"sync"
	"time"
)

// Cache is a size-bounded LRU cache for pipeline results. It exists purely
// to avoid re-running the filter/sort pass on every page turn; the engine is
// re-derivable, so the cache can be dropped wholesale whenever the snapshot
// or any result-shaping setting changes.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	lru     *lruList
	maxSize int64
	curSize int64
	hits    int64
	misses  int64
	logger  Logger
}

// New creates a cache with the given size limit in bytes. Limits below 1
// fall back to the default.
func New(maxSize int64, logger Logger) *Cache {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries: make(map[string]*Entry),
		lru:     newLRUList(),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Get returns the cached entry for a key, updating recency.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	entry.AccessTime = time.Now().UnixNano()
	c.lru.touch(key)
	return entry, true
}

// Store inserts an entry, evicting least recently used entries until the
// size limit is respected. Entries larger than the whole cache are skipped.
func (c *Cache) Store(key string, entry *Entry) {
	if entry == nil {
		return
	}
	entry.Size = estimateSize(entry)

	c.mu.Lock()
	defer c.mu.Unlock()

	// maxSize is guarded by mu; SetMaxSize mutates it concurrently.
	if entry.Size > c.maxSize {
		if c.logger != nil {
			c.logger.Log("debug", fmt.Sprintf("cache: entry %s too large (%d bytes), not cached", key, entry.Size))
		}
		return
	}

	if old, ok := c.entries[key]; ok {
		c.curSize -= old.Size
	}
	entry.AccessTime = time.Now().UnixNano()
	entry.CreateTime = time.Now()
	c.entries[key] = entry
	c.curSize += entry.Size
	c.lru.touch(key)

	for c.curSize > c.maxSize {
		victim := c.lru.oldest()
		if victim == "" {
			break
		}
		if old, ok := c.entries[victim]; ok {
			c.curSize -= old.Size
			delete(c.entries, victim)
		}
	}
}

// Clear drops every entry. Called on snapshot swap and on settings changes
// that invalidate derived results.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.lru = newLRUList()
	c.curSize = 0
}

// SetMaxSize updates the size limit and evicts down to it.
func (c *Cache) SetMaxSize(maxSize int64) {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = maxSize
	for c.curSize > c.maxSize {
		victim := c.lru.oldest()
		if victim == "" {
			break
		}
		if old, ok := c.entries[victim]; ok {
			c.curSize -= old.Size
			delete(c.entries, victim)
		}
	}
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalEntries: len(c.entries),
		TotalSize:    c.curSize,
		MaxSize:      c.maxSize,
		Hits:         c.hits,
		Misses:       c.misses,
	}
	if c.maxSize > 0 {
		stats.UsagePercent = float64(c.curSize) / float64(c.maxSize) * 100
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// estimateSize approximates the memory cost of an entry. Rows are shared
// with the snapshot, so only pointer and header overhead is charged.
func estimateSize(entry *Entry) int64 {
	size := int64(len(entry.Rows)) * rowOverhead
	for _, col := range entry.Columns {
		size += int64(len(col)) + 16
	}
	return size + 128
}
