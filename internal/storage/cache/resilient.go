package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
)

// Resilient wraps a store so backend failures never reach the caller:
// read errors become misses and write errors are logged and dropped.
type Resilient struct {
	inner  interfaces.CacheStore
	logger *common.Logger
}

// NewResilient wraps inner
func NewResilient(inner interfaces.CacheStore, logger *common.Logger) *Resilient {
	return &Resilient{inner: inner, logger: logger}
}

func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.inner.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn().Str("backend", r.inner.Name()).Str("key", key).Err(err).Msg("Cache read failed, treating as miss")
	}
	return nil, ErrMiss
}

func (r *Resilient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.inner.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn().Str("backend", r.inner.Name()).Str("key", key).Err(err).Msg("Cache write failed")
	}
	return nil
}

func (r *Resilient) Name() string {
	return r.inner.Name()
}

func (r *Resilient) Close() error {
	return r.inner.Close()
}
