// Package cache provides the key-value cache stores behind the stock
// pipelines: redis, surrealdb, badger and a no-op store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Backend names
const (
	BackendRedis     = "redis"
	BackendSurrealDB = "surrealdb"
	BackendBadger    = "badger"
	BackendNone      = "none"
)

// GetEntry reads and decodes a CacheEntry. The entry is returned even when
// stale; callers check freshness against their own TTL.
func GetEntry[T any](ctx context.Context, store interfaces.CacheStore, key string) (*models.CacheEntry[T], error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var entry models.CacheEntry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// GetFresh is GetEntry that also reports a stale entry as ErrMiss.
func GetFresh[T any](ctx context.Context, store interfaces.CacheStore, key string, ttl time.Duration, now time.Time) (*models.CacheEntry[T], error) {
	entry, err := GetEntry[T](ctx, store, key)
	if err != nil {
		return nil, err
	}
	if !entry.FreshAt(now, ttl) {
		return nil, ErrMiss
	}
	return entry, nil
}

// PutEntry stamps data with created and writes it with a store-level expiry of ttl.
// Any previous value for key is replaced.
func PutEntry[T any](ctx context.Context, store interfaces.CacheStore, key string, data T, created time.Time, ttl time.Duration) error {
	raw, err := json.Marshal(models.NewCacheEntry(data, created))
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}

func expiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(exp, now time.Time) bool {
	return !exp.IsZero() && !now.Before(exp)
}
