package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketLengths = []byte("lengths")
	bucketMeta    = []byte("meta")
	keyStamp      = []byte("stamp")
)

// BoltCache persists compressed lengths across runs. Keys are text hashes,
// values the compressed byte length under one fixed compressor configuration.
type BoltCache struct {
	db *bbolt.DB
}

// CacheStamp identifies a compressor configuration. Cached lengths are only
// valid for the exact backend and level that produced them, so a stamp change
// invalidates the whole cache.
func CacheStamp(name string, level int) string {
	relevant := struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}{
		Name:  name,
		Level: level,
	}
	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// NewBoltCache opens (or creates) the cache database at path. A stored stamp
// differing from the given one clears all cached lengths before use.
func NewBoltCache(path, stamp string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketLengths); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketLengths, err)
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
		}

		if prev := meta.Get(keyStamp); prev != nil && string(prev) != stamp {
			if err := tx.DeleteBucket(bucketLengths); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucketLengths); err != nil {
				return err
			}
		}
		return meta.Put(keyStamp, []byte(stamp))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

func textKey(text string) []byte {
	hash := sha256.Sum256([]byte(text))
	return hash[:16]
}

func (c *BoltCache) Get(text string) (int, bool) {
	var (
		n  int
		ok bool
	)
	err := c.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketLengths).Get(textKey(text)); len(data) == 8 {
			n = int(binary.BigEndian.Uint64(data))
			ok = true
		}
		return nil
	})
	if err != nil {
		return 0, false
	}
	return n, ok
}

// Put stores one length. The cache is best effort: a failed write only costs
// a recompute later, so the error is dropped. Batch lets concurrent workers
// share transactions.
func (c *BoltCache) Put(text string, size int) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(size))
	_ = c.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLengths).Put(textKey(text), buf)
	})
}

// Stamp returns the stored compressor stamp.
func (c *BoltCache) Stamp() (string, error) {
	var stamp string
	err := c.db.View(func(tx *bbolt.Tx) error {
		stamp = string(tx.Bucket(bucketMeta).Get(keyStamp))
		return nil
	})
	return stamp, err
}

// Size returns the number of cached lengths.
func (c *BoltCache) Size() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketLengths).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear drops every cached length but keeps the stamp.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketLengths); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketLengths)
		return err
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
