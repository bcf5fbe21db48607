// Package bolt persists the query journal in a bbolt database.
package bolt

import (
	"encoding/binary"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/nxzone/blackholed/internal/dns/repos/journal"
)

var (
	bucketNames  = []byte("names")
	bucketRCodes = []byte("rcodes")
)

// entrySize is count + first seen + last seen, each 8 bytes big-endian.
const entrySize = 24

// boltStore implements journal.Store using bbolt.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (journal.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketNames); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketRCodes); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Get(name string) (journal.Entry, bool, error) {
	var entry journal.Entry
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNames)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(name))
		if len(v) != entrySize {
			return nil
		}
		entry = decodeEntry(v)
		found = true
		return nil
	})
	return entry, found, err
}

func (s *boltStore) Put(name string, e journal.Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNames)
		return b.Put([]byte(name), encodeEntry(e))
	})
}

// BumpRCode increments the aggregate counter for one response code.
func (s *boltStore) BumpRCode(rcode string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRCodes)
		var count uint64
		if v := b.Get([]byte(rcode)); len(v) == 8 {
			count = binary.BigEndian.Uint64(v)
		}
		count++
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count)
		return b.Put([]byte(rcode), buf)
	})
}

// VisitNames walks every key in the names bucket.
func (s *boltStore) VisitNames(visit func(name []byte) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNames)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			kk := make([]byte, len(k))
			copy(kk, k)
			if !visit(kk) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) Stats() journal.StoreStats {
	st := journal.StoreStats{RCodes: make(map[string]uint64)}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketNames); b != nil {
			st.Names = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketRCodes); b != nil {
			return b.ForEach(func(k, v []byte) error {
				if len(v) == 8 {
					st.RCodes[string(k)] = binary.BigEndian.Uint64(v)
				}
				return nil
			})
		}
		return nil
	})
	return st
}

func encodeEntry(e journal.Entry) []byte {
	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint64(buf[0:8], e.Count)
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.FirstSeen))
	binary.BigEndian.PutUint64(buf[16:24], uint64(e.LastSeen))
	return buf
}

func decodeEntry(v []byte) journal.Entry {
	return journal.Entry{
		Count:     binary.BigEndian.Uint64(v[0:8]),
		FirstSeen: int64(binary.BigEndian.Uint64(v[8:16])),
		LastSeen:  int64(binary.BigEndian.Uint64(v[16:24])),
	}
}
