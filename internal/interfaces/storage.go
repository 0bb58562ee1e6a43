// Package interfaces defines service contracts for stockdash
package interfaces

import (
	"context"
	"time"
)

// CacheStore is a key-value store with per-key expiry.
// Get returns cache.ErrMiss when the key is absent or expired.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Name identifies the backend in logs and the banner
	Name() string

	Close() error
}
