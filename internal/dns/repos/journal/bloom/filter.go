// Package bloom adapts bits-and-blooms to the journal.SeenFilter interface.
package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/nxzone/blackholed/internal/dns/repos/journal"
)

// filter wraps a bits-and-blooms BloomFilter with a mutex so that Add and
// MightContain are safe from concurrent observations.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

// New creates a SeenFilter sized for the expected number of distinct names
// at the given false-positive rate.
func New(capacity uint, fpRate float64) journal.SeenFilter {
	return &filter{
		bf: bitsbloom.NewWithEstimates(capacity, fpRate),
	}
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}
