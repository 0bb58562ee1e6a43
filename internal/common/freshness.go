// Package common provides shared utilities for stockdash
package common

import "time"

// Freshness TTLs for cached data. FreshnessMarketList is the pipeline
// fallback when a [[pipelines]] entry has no ttl.
const (
	FreshnessMarketList   = 10 * time.Minute
	FreshnessPriceHistory = 1 * time.Hour
	FreshnessEarnings     = 1 * time.Hour
	FreshnessQuote        = 1 * time.Minute
)
