package journal_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxzone/blackholed/internal/dns/common/clock"
	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/domain"
	"github.com/nxzone/blackholed/internal/dns/repos/journal"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/bloom"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/bolt"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/lru"
)

func newTestJournal(t *testing.T, dbPath string, clk clock.Clock) (journal.Repository, func()) {
	t.Helper()

	store, err := bolt.New(dbPath)
	require.NoError(t, err)

	cache, err := lru.New(16)
	require.NoError(t, err)

	repo, err := journal.New(journal.Options{
		Store:  store,
		Cache:  cache,
		Seen:   bloom.New(1024, 0.01),
		Clock:  clk,
		Logger: log.NewNoopLogger(),
	})
	require.NoError(t, err)

	return repo, func() { require.NoError(t, repo.Close()) }
}

func question(t *testing.T, name string, rrtype domain.RRType) domain.Question {
	t.Helper()
	q, err := domain.NewQuestion(1, name, rrtype, domain.RRClassIN)
	require.NoError(t, err)
	return q
}

func TestObserveNoveltyAndCounts(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC))
	j, cleanup := newTestJournal(t, filepath.Join(t.TempDir(), "journal.db"), clk)
	defer cleanup()

	q := question(t, "probe.romulan.zone.", domain.RRTypeA)

	assert.True(t, j.Observe(q, domain.RCodeNXDomain), "first sighting must be novel")
	assert.False(t, j.Observe(q, domain.RCodeNXDomain), "second sighting must not be novel")

	// Same name, different case and type: still the same canonical name.
	q2 := question(t, "PROBE.romulan.zone", domain.RRTypeAAAA)
	assert.False(t, j.Observe(q2, domain.RCodeNXDomain))

	stats := j.Stats()
	assert.Equal(t, uint64(1), stats.Store.Names)
	assert.Equal(t, uint64(3), stats.Store.RCodes["NXDOMAIN"])
}

func TestObserveTimestamps(t *testing.T) {
	start := time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(start)
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	j, cleanup := newTestJournal(t, dbPath, clk)

	q := question(t, "probe.romulan.zone", domain.RRTypeA)
	j.Observe(q, domain.RCodeNXDomain)
	clk.Advance(5 * time.Minute)
	j.Observe(q, domain.RCodeNXDomain)
	cleanup()

	// Reopen the store directly and verify the persisted entry.
	store, err := bolt.New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	entry, found, err := store.Get("probe.romulan.zone")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(2), entry.Count)
	assert.Equal(t, start.Unix(), entry.FirstSeen)
	assert.Equal(t, start.Add(5*time.Minute).Unix(), entry.LastSeen)
}

func TestObserveSurvivesRestart(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC))
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	j, cleanup := newTestJournal(t, dbPath, clk)
	q := question(t, "probe.romulan.zone", domain.RRTypeA)
	assert.True(t, j.Observe(q, domain.RCodeNXDomain))
	cleanup()

	// A fresh journal warms its Bloom filter from the store, so the name is
	// not novel again and its count continues from the persisted entry.
	j2, cleanup2 := newTestJournal(t, dbPath, clk)
	assert.False(t, j2.Observe(q, domain.RCodeNXDomain))
	cleanup2()

	store, err := bolt.New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	entry, found, err := store.Get("probe.romulan.zone")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(2), entry.Count)
}

func TestObserveDistinctNames(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC))
	j, cleanup := newTestJournal(t, filepath.Join(t.TempDir(), "journal.db"), clk)
	defer cleanup()

	names := []string{"a.romulan.zone", "b.romulan.zone", "c.romulan.zone"}
	for _, name := range names {
		assert.True(t, j.Observe(question(t, name, domain.RRTypeA), domain.RCodeNXDomain))
	}

	stats := j.Stats()
	assert.Equal(t, uint64(len(names)), stats.Store.Names)
}

func TestNopJournal(t *testing.T) {
	n := &journal.NopJournal{}

	assert.False(t, n.Observe(domain.Question{Name: "x.romulan.zone"}, domain.RCodeNXDomain))
	assert.NoError(t, n.Close())
}
