// Package boltstore keeps the reply log in a local bbolt file, for
// deployments without Postgres. Replies live in one bucket keyed by the
// zero-padded status ID so that byte order matches numeric order.
package boltstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"nagato/internal/db"
	"nagato/internal/models"
)

var bucketReplies = []byte("replies")

// keyWidth covers every unsigned 64-bit decimal ID with room to spare.
const keyWidth = 32

// Store is a bbolt-backed reply log.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the state file at path.
func Open(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReplies)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func statusKey(id string) []byte {
	id = strings.TrimLeft(id, "0")
	if len(id) >= keyWidth {
		return []byte(id)
	}
	return []byte(strings.Repeat("0", keyWidth-len(id)) + id)
}

// LastRepliedStatusID returns the highest status ID replied to,
// or db.ErrNoReplies when nothing has been recorded.
func (s *Store) LastRepliedStatusID(ctx context.Context) (string, error) {
	var rec models.ReplyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(bucketReplies).Cursor().Last()
		if v == nil {
			return db.ErrNoReplies
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return "", err
	}
	return rec.StatusID, nil
}

// RecordReply stores a sent reply. Recording the same status twice is a no-op.
func (s *Store) RecordReply(ctx context.Context, rec models.ReplyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	key := statusKey(rec.StatusID)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReplies)
		if b.Get(key) != nil {
			return nil
		}
		return b.Put(key, data)
	})
}

// RecentReplies returns up to limit replies, newest status first.
func (s *Store) RecentReplies(ctx context.Context, limit int) ([]models.ReplyRecord, error) {
	var replies []models.ReplyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketReplies).Cursor()
		for k, v := c.Last(); k != nil && len(replies) < limit; k, v = c.Prev() {
			var rec models.ReplyRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal reply %s: %w", k, err)
			}
			replies = append(replies, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replies, nil
}
