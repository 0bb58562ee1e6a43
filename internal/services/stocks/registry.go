package stocks

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
)

// Registry maps universe names to their pipelines
type Registry struct {
	pipelines map[string]*Pipeline
	order     []string
}

// NewRegistry builds one pipeline per config entry. Entries whose universe
// is not in the reference dataset are skipped with a warning.
func NewRegistry(cfgs []common.PipelineConfig, client interfaces.QuoteMetricsClient, ref interfaces.SymbolReference, store interfaces.CacheStore, logger *common.Logger) (*Registry, error) {
	r := &Registry{pipelines: make(map[string]*Pipeline, len(cfgs))}

	for _, cfg := range cfgs {
		name := strings.ToLower(cfg.Universe)
		if _, dup := r.pipelines[name]; dup {
			logger.Warn().Str("universe", name).Msg("Duplicate pipeline config ignored")
			continue
		}
		symbols, ok := ref.Universe(name)
		if !ok || len(symbols) == 0 {
			logger.Warn().Str("universe", name).Msg("Universe not in reference data, pipeline skipped")
			continue
		}
		cfg.Universe = name
		r.pipelines[name] = NewPipeline(cfg, symbols, client, ref, store, logger)
		r.order = append(r.order, name)

		logger.Debug().
			Str("universe", name).
			Str("key", cfg.GetCacheKey()).
			Dur("ttl", cfg.GetTTL()).
			Int("symbols", len(r.pipelines[name].symbols)).
			Msg("Stock pipeline configured")
	}

	if len(r.order) == 0 {
		return nil, fmt.Errorf("no stock pipelines configured")
	}
	return r, nil
}

// Get returns the pipeline for a universe
func (r *Registry) Get(universe string) (interfaces.StockService, bool) {
	p, ok := r.pipelines[strings.ToLower(universe)]
	if !ok {
		return nil, false
	}
	return p, true
}

// Default returns the first configured pipeline
func (r *Registry) Default() interfaces.StockService {
	return r.pipelines[r.order[0]]
}

// Universes returns the configured universe names in config order
func (r *Registry) Universes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every pipeline in config order
func (r *Registry) All() []*Pipeline {
	out := make([]*Pipeline, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.pipelines[name])
	}
	return out
}
