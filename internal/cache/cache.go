// Package cache memoises book search results across runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/storage/redis/v3"

	"nagato/internal/models"
	"nagato/internal/recommend"
)

const keyPrefix = "nagato:search:"

// Storage is the part of a gofiber storage driver the cache needs.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// NewRedis connects to Redis at url (redis:// or rediss://).
// The driver panics when the initial ping fails; that is returned as an error.
func NewRedis(url string) (store *redis.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			store, err = nil, fmt.Errorf("failed to connect to redis: %v", r)
		}
	}()
	return redis.New(redis.Config{URL: url}), nil
}

type entry struct {
	Book  *models.Book `json:"book,omitempty"`
	Count int          `json:"count"`
}

// Oracle caches the results of another book search oracle.
// The first storage failure is logged and turns the cache off for the life of
// the Oracle; oracle errors are never cached.
type Oracle struct {
	next     recommend.Oracle[models.Book]
	store    Storage
	ttl      time.Duration
	logger   *slog.Logger
	disabled atomic.Bool
}

// NewOracle wraps next with a cache kept in store for ttl.
func NewOracle(next recommend.Oracle[models.Book], store Storage, ttl time.Duration, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{next: next, store: store, ttl: ttl, logger: logger}
}

// Search returns the cached result for terms, querying the wrapped oracle on a miss.
func (o *Oracle) Search(ctx context.Context, terms []string) (*models.Book, int, error) {
	if o.disabled.Load() {
		return o.next.Search(ctx, terms)
	}
	key := Key(terms)

	data, err := o.store.Get(key)
	if err != nil {
		o.disable("read", err)
		return o.next.Search(ctx, terms)
	}
	if data != nil {
		var e entry
		if err := json.Unmarshal(data, &e); err == nil {
			o.logger.Debug("search cache hit", "terms", terms, "count", e.Count)
			return e.Book, e.Count, nil
		}
		o.logger.Warn("discarding corrupt search cache entry", "key", key)
	}

	book, count, err := o.next.Search(ctx, terms)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(entry{Book: book, Count: count}); err == nil {
		if err := o.store.Set(key, data, o.ttl); err != nil {
			o.disable("write", err)
		}
	}
	return book, count, nil
}

// Disabled reports whether a storage failure turned the cache off.
func (o *Oracle) Disabled() bool {
	return o.disabled.Load()
}

func (o *Oracle) disable(op string, err error) {
	if o.disabled.CompareAndSwap(false, true) {
		o.logger.Warn("search cache disabled after storage failure", "op", op, "error", err)
	}
}

// Key returns the storage key for a query. Term order matters.
func Key(terms []string) string {
	sum := sha256.Sum256([]byte(strings.Join(terms, "\x1f")))
	return keyPrefix + hex.EncodeToString(sum[:])
}
