// Package journal records the names queried at this sinkhole. A blackhole
// authority publishes nothing, so the query stream itself is the interesting
// output: which names were probed, how often, and when they first appeared.
//
// The repository composes three collaborators in a read pipeline:
// Bloom filter (has this name ever been seen?) -> LRU cache (hot per-name
// entries) -> Bolt store (persistent truth).
package journal

import "github.com/nxzone/blackholed/internal/dns/domain"

// Entry is the persisted observation state for one canonical name.
type Entry struct {
	Count     uint64
	FirstSeen int64 // seconds since epoch
	LastSeen  int64 // seconds since epoch
}

// StoreStats captures high-level counts from the persistent store.
type StoreStats struct {
	Names  uint64
	RCodes map[string]uint64
}

// Store abstracts the persistent journal index.
type Store interface {
	Get(name string) (Entry, bool, error)
	Put(name string, e Entry) error
	BumpRCode(rcode string) error

	// VisitNames walks every persisted name. If visit returns false,
	// iteration stops. Used to warm the Bloom filter at startup.
	VisitNames(visit func(name []byte) bool) error

	Stats() StoreStats
	Close() error
}

// EntryCache caches per-name entries with basic metrics.
type EntryCache interface {
	Get(name string) (Entry, bool)
	Put(name string, e Entry)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// SeenFilter is the minimal Bloom filter interface the repository needs.
// MightContain may report false positives but never false negatives.
type SeenFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
	Store          StoreStats
}

// Repository is the composition layer that wires seen-filter -> cache ->
// store. It satisfies the resolver's Journal dependency.
type Repository interface {
	Observe(query domain.Question, rcode domain.RCode) (novel bool)
	Stats() RepoStats
	Close() error
}
