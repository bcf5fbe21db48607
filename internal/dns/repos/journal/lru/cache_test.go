package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxzone/blackholed/internal/dns/repos/journal"
)

func TestPutGet(t *testing.T) {
	cache, err := New(4)
	require.NoError(t, err)

	want := journal.Entry{Count: 2, FirstSeen: 100, LastSeen: 200}
	cache.Put("probe.romulan.zone", want)

	got, ok := cache.Get("probe.romulan.zone")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, cache.Len())
}

func TestGetMiss(t *testing.T) {
	cache, err := New(4)
	require.NoError(t, err)

	_, ok := cache.Get("never-seen.romulan.zone")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	cache, err := New(2)
	require.NoError(t, err)

	cache.Put("a.romulan.zone", journal.Entry{Count: 1})
	cache.Get("a.romulan.zone")
	cache.Get("b.romulan.zone")

	hits, misses, evictions := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, uint64(0), evictions)
}

func TestEviction(t *testing.T) {
	cache, err := New(2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		cache.Put(fmt.Sprintf("host%d.romulan.zone", i), journal.Entry{Count: 1})
	}

	assert.Equal(t, 2, cache.Len())
	_, _, evictions := cache.Stats()
	assert.Equal(t, uint64(1), evictions)
}

func TestPurge(t *testing.T) {
	cache, err := New(4)
	require.NoError(t, err)

	cache.Put("a.romulan.zone", journal.Entry{Count: 1})
	cache.Put("b.romulan.zone", journal.Entry{Count: 1})
	cache.Purge()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("a.romulan.zone")
	assert.False(t, ok)
}

func TestDisabledCache(t *testing.T) {
	cache, err := New(0)
	require.NoError(t, err)

	cache.Put("a.romulan.zone", journal.Entry{Count: 1})
	_, ok := cache.Get("a.romulan.zone")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())

	hits, misses, evictions := cache.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, evictions)
}
