// Package models defines data structures for stockdash
package models

import "time"

// Data sources reported to the UI
const (
	SourceLive = "live"
	SourceMock = "mock"
)

// StockRecord is one equity's current snapshot as served to the dashboard.
// Nullable fundamentals are nil when the provider has no usable value.
type StockRecord struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	DayHigh       float64  `json:"dayHigh"`
	DayLow        float64  `json:"dayLow"`
	YearHigh      float64  `json:"yearHigh"`
	YearLow       float64  `json:"yearLow"`
	Volume        float64  `json:"volume"`
	AvgVolume     float64  `json:"avgVolume"`
	MarketCap     float64  `json:"marketCap"`
	PE            *float64 `json:"pe"`
	EPS           *float64 `json:"eps"`
	EBITDA        *float64 `json:"ebitda"`
	DividendYield *float64 `json:"dividendYield"`
	Sector        string   `json:"sector"`
	Industry      string   `json:"industry"`
	Exchange      string   `json:"exchange"`
}

// StockDetail is one record with where it came from.
type StockDetail struct {
	StockRecord
	Source  string `json:"source"`
	Cached  bool   `json:"cached"`
	Message string `json:"message,omitempty"`
}

// SymbolMetadata is static descriptive data for a ticker.
type SymbolMetadata struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Sector   string `json:"sector" yaml:"sector"`
	Industry string `json:"industry" yaml:"industry"`
	Exchange string `json:"exchange" yaml:"exchange"`
}

// StockList is the response envelope for a universe's stock list.
type StockList struct {
	Universe   string        `json:"universe"`
	Data       []StockRecord `json:"data"`
	Source     string        `json:"source"`
	Cached     bool          `json:"cached"`
	StockCount int           `json:"stockCount"`
	Timestamp  time.Time     `json:"timestamp"`
	Message    string        `json:"message,omitempty"`
	Partial    bool          `json:"partial,omitempty"` // refresh stopped before every symbol was fetched
}

// SectorSummary aggregates a stock list by sector.
// ChangePercent is weighted by market cap.
type SectorSummary struct {
	Sector        string  `json:"sector"`
	StockCount    int     `json:"stockCount"`
	MarketCap     float64 `json:"marketCap"`
	ChangePercent float64 `json:"changePercent"`
}

// Float returns a pointer to v, for nullable fields.
func Float(v float64) *float64 {
	return &v
}
