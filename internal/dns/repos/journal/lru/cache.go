// Package lru provides an LRU-backed journal.EntryCache.
package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nxzone/blackholed/internal/dns/repos/journal"
)

// entryCache is an LRU-backed implementation of journal.EntryCache.
// It tracks basic metrics: hits, misses, and evictions.
type entryCache struct {
	lru       *lru.Cache[string, journal.Entry]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is a no-op EntryCache used when size <= 0.
type disabledCache struct{}

// New creates an EntryCache with the given capacity. If size <= 0, a
// disabled no-op cache is returned that always misses and tracks no metrics.
func New(size int) (journal.EntryCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	var ec entryCache
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ journal.Entry) {
		atomic.AddUint64(&ec.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	ec.lru = cache
	return &ec, nil
}

// Get looks up an entry by name, counting hits and misses.
func (c *entryCache) Get(name string) (journal.Entry, bool) {
	if val, ok := c.lru.Get(name); ok {
		atomic.AddUint64(&c.hits, 1)
		return val, true
	}
	atomic.AddUint64(&c.misses, 1)
	return journal.Entry{}, false
}

// Put stores an entry by name.
func (c *entryCache) Put(name string, e journal.Entry) {
	c.lru.Add(name, e)
}

// Len returns the number of entries in the cache.
func (c *entryCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *entryCache) Purge() { c.lru.Purge() }

// Stats returns cumulative hit/miss/eviction counters.
func (c *entryCache) Stats() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

// disabledCache implementation

func (d *disabledCache) Get(string) (journal.Entry, bool) { return journal.Entry{}, false }

func (d *disabledCache) Put(string, journal.Entry) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }

var _ journal.EntryCache = (*entryCache)(nil)
var _ journal.EntryCache = (*disabledCache)(nil)
