package journal

import (
	"sync"

	"github.com/nxzone/blackholed/internal/dns/common/clock"
	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/common/utils"
	"github.com/nxzone/blackholed/internal/dns/domain"
)

// repository composes seen-filter, cache, and store. Observe never surfaces
// an error: journal I/O failures are logged and the observation is dropped,
// keeping telemetry strictly off the resolution path.
type repository struct {
	mu     sync.Mutex
	store  Store
	cache  EntryCache
	seen   SeenFilter
	clock  clock.Clock
	logger log.Logger
}

// Options holds the collaborators for a journal repository.
type Options struct {
	Store  Store
	Cache  EntryCache
	Seen   SeenFilter
	Clock  clock.Clock
	Logger log.Logger
}

// New constructs a journal repository and warms the Bloom filter from the
// persisted names, so entries survive restarts without being reset by a
// cold filter.
func New(opts Options) (Repository, error) {
	r := &repository{
		store:  opts.Store,
		cache:  opts.Cache,
		seen:   opts.Seen,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
	if err := r.store.VisitNames(func(name []byte) bool {
		r.seen.Add(name)
		return true
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// Observe records one resolved query and reports whether the canonical name
// was seen for the first time. The Bloom filter short-circuits store reads
// for definitely-new names; known names consult cache then store. A Bloom
// false positive only costs an extra store read, never a wrong count.
func (r *repository) Observe(query domain.Question, rcode domain.RCode) bool {
	cn := utils.CanonicalDNSName(query.Name)
	if cn == "" {
		return false
	}
	now := r.clock.Now().Unix()

	r.mu.Lock()
	defer r.mu.Unlock()

	var entry Entry
	novel := true
	if r.seen.MightContain([]byte(cn)) {
		if cached, ok := r.cache.Get(cn); ok {
			entry = cached
			novel = false
		} else if stored, found, err := r.store.Get(cn); err != nil {
			r.logger.Warn(map[string]any{
				"name":  cn,
				"error": err.Error(),
			}, "Journal store read failed")
		} else if found {
			entry = stored
			novel = false
		}
	}
	r.seen.Add([]byte(cn))

	if entry.FirstSeen == 0 {
		entry.FirstSeen = now
	}
	entry.Count++
	entry.LastSeen = now

	r.cache.Put(cn, entry)
	if err := r.store.Put(cn, entry); err != nil {
		r.logger.Warn(map[string]any{
			"name":  cn,
			"error": err.Error(),
		}, "Journal store write failed")
	}
	if err := r.store.BumpRCode(rcode.String()); err != nil {
		r.logger.Warn(map[string]any{
			"rcode": rcode.String(),
			"error": err.Error(),
		}, "Journal rcode counter update failed")
	}

	return novel
}

// Stats returns cache counters and persistent store statistics.
func (r *repository) Stats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	return RepoStats{
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheEvictions: evictions,
		Store:          r.store.Stats(),
	}
}

// Close flushes and closes the persistent store.
func (r *repository) Close() error {
	return r.store.Close()
}
