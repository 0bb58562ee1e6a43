package cache

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
)

const connectTimeout = 10 * time.Second

// New selects the backend named in cfg and wraps it in Resilient.
// Missing credentials or a failed connection degrade to the no-op store;
// this never fails.
func New(ctx context.Context, cfg common.CacheConfig, logger *common.Logger) interfaces.CacheStore {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	var (
		store interfaces.CacheStore
		err   error
	)

	switch backend {
	case BackendRedis, "kv", "":
		if !cfg.Redis.Configured() {
			logger.Warn().Msg("Redis cache not configured (set KV_URL or REDIS_URL), caching disabled")
			return NewNopStore()
		}
		store, err = NewRedisStore(ctx, cfg.Redis, logger)
	case BackendSurrealDB:
		if !cfg.SurrealDB.Configured() {
			logger.Warn().Msg("SurrealDB cache not configured, caching disabled")
			return NewNopStore()
		}
		store, err = NewSurrealStore(ctx, cfg.SurrealDB, logger)
	case BackendBadger:
		store, err = NewBadgerStore(cfg.Badger.Path, logger)
	case BackendNone, "off", "disabled":
		logger.Info().Msg("Caching disabled")
		return NewNopStore()
	default:
		logger.Warn().Str("backend", cfg.Backend).Msg("Unknown cache backend, caching disabled")
		return NewNopStore()
	}

	if err != nil {
		logger.Warn().Str("backend", backend).Err(err).Msg("Cache unavailable, caching disabled")
		return NewNopStore()
	}
	return NewResilient(store, logger)
}
