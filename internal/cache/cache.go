// Package cache provides a local seen-URL cache for the article tracker.
// It uses BoltDB so a poll over an unchanged sitemap can be answered without
// a round trip to Postgres per URL. The cache is advisory: a miss falls back
// to the database, and the bot runs fine without it.
package cache

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

const seenBucket = "seen_urls" // Bucket name for detected article URLs

// Cache is a write-through record of article URLs the bot has processed.
type Cache struct {
	db *bbolt.DB
}

// New opens (or creates) the cache database under dataPath.
func New(dataPath string) (*Cache, error) {
	dbPath := filepath.Join(dataPath, "tracker-cache.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(seenBucket)); err != nil {
			return fmt.Errorf("create seen bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Seen reports whether the URL is in the cache.
func (c *Cache) Seen(url string) (bool, error) {
	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(seenBucket)).Get([]byte(url)) != nil
		return nil
	})
	return found, err
}

// MarkSeen records the URL with its detection timestamp.
func (c *Cache) MarkSeen(url string, detectedAt time.Time) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		ts := strconv.FormatInt(detectedAt.UnixNano(), 10)
		return tx.Bucket([]byte(seenBucket)).Put([]byte(url), []byte(ts))
	})
}

// Len returns the number of cached URLs.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(seenBucket)).Stats().KeyN
		return nil
	})
	return n, err
}
