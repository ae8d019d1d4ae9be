package urlcheck

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var verdictBucket = []byte("url_verdicts")

type boltEntry struct {
	Valid     bool      `json:"valid"`
	CheckedAt time.Time `json:"checked_at"`
}

// BoltCache persists URL verdicts in a bbolt file so restarts do not
// re-probe every link. Same TTL and lazy-purge behavior as MemoryCache.
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// OpenBoltCache opens (or creates) the verdict database at path.
func OpenBoltCache(path string, ttl time.Duration) (*BoltCache, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open url cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(verdictBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create url cache bucket: %w", err)
	}

	return &BoltCache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the underlying database file.
func (c *BoltCache) Close() error { return c.db.Close() }

// Get returns the persisted verdict for url if present and fresh.
func (c *BoltCache) Get(url string) (bool, bool) {
	var entry boltEntry
	found := false

	_ = c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(verdictBucket).Get([]byte(url))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if !found || c.now().Sub(entry.CheckedAt) > c.ttl {
		return false, false
	}
	return entry.Valid, true
}

// Put stores a verdict and sweeps expired entries once the bucket grows
// past the purge threshold.
func (c *BoltCache) Put(url string, valid bool) {
	entry := boltEntry{Valid: valid, CheckedAt: c.now()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_ = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(verdictBucket)
		if err := b.Put([]byte(url), raw); err != nil {
			return err
		}

		if b.Stats().KeyN < purgeThreshold {
			return nil
		}
		cutoff := c.now().Add(-c.ttl)
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var e boltEntry
			if json.Unmarshal(v, &e) != nil || e.CheckedAt.Before(cutoff) {
				if err := cur.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Stats reports entry counts split by verdict.
func (c *BoltCache) Stats() CacheStats {
	stats := CacheStats{}
	cutoff := c.now().Add(-c.ttl)

	_ = c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(verdictBucket).ForEach(func(_, v []byte) error {
			var e boltEntry
			if json.Unmarshal(v, &e) != nil || e.CheckedAt.Before(cutoff) {
				return nil
			}
			stats.Entries++
			if e.Valid {
				stats.Valid++
			} else {
				stats.Invalid++
			}
			return nil
		})
	})
	return stats
}
