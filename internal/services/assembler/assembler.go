// Package assembler turns a symbol's quote, metrics and static metadata
// into a dashboard StockRecord.
package assembler

import (
	"sort"

	"github.com/bobmcallan/stockdash/internal/models"
)

// Placeholder multipliers used when the provider has no real figure.
// Values derived from them are estimates, not market data.
const (
	marketCapPerDollar = 1e9 // marketCap estimate = price x 1e9
	yearHighFactor     = 1.1
	yearLowFactor      = 0.9
	millions           = 1e6
)

// DefaultSector is assigned to symbols without metadata.
const DefaultSector = "Other"

// DefaultExchange is assigned to symbols without metadata.
const DefaultExchange = "US"

// Assemble builds a record for symbol. It returns false when the quote is
// missing or describes an untraded symbol. metrics and meta may be nil.
func Assemble(symbol string, quote *models.Quote, metrics *models.Metrics, meta *models.SymbolMetadata) (*models.StockRecord, bool) {
	if !quote.Tradeable() {
		return nil, false
	}
	if metrics == nil {
		metrics = &models.Metrics{}
	}

	rec := &models.StockRecord{
		Symbol:        symbol,
		Price:         quote.Current,
		Change:        deref(quote.Change),
		ChangePercent: deref(quote.ChangePercent),
		DayHigh:       quote.High,
		DayLow:        quote.Low,
	}

	rec.PE = positive(first(metrics.PETTM, metrics.PEBasicExclExtraTTM))
	rec.EPS = first(metrics.EPSTTM, metrics.EPSBasicExclExtraItemsTTM)

	if metrics.MarketCapitalization != nil {
		rec.MarketCap = *metrics.MarketCapitalization * millions
	} else {
		rec.MarketCap = quote.Current * marketCapPerDollar
	}

	if metrics.WeekHigh52 != nil {
		rec.YearHigh = *metrics.WeekHigh52
	} else {
		rec.YearHigh = quote.High * yearHighFactor
	}
	if metrics.WeekLow52 != nil {
		rec.YearLow = *metrics.WeekLow52
	} else {
		rec.YearLow = quote.Low * yearLowFactor
	}

	if metrics.TenDayAverageVolume != nil {
		rec.Volume = *metrics.TenDayAverageVolume * millions
	}
	if metrics.ThreeMonthAverageVolume != nil {
		rec.AvgVolume = *metrics.ThreeMonthAverageVolume * millions
	} else {
		rec.AvgVolume = rec.Volume
	}

	if metrics.EBITDATTM != nil {
		rec.EBITDA = models.Float(*metrics.EBITDATTM * millions)
	}
	rec.DividendYield = first(metrics.DividendYieldIndicatedAnnual, metrics.CurrentDividendYieldTTM)

	if meta != nil {
		rec.Name = meta.Name
		rec.Sector = meta.Sector
		rec.Industry = meta.Industry
		rec.Exchange = meta.Exchange
	}
	if rec.Name == "" {
		rec.Name = symbol
	}
	if rec.Sector == "" {
		rec.Sector = DefaultSector
	}
	if rec.Exchange == "" {
		rec.Exchange = DefaultExchange
	}

	return rec, true
}

// Sort orders records by market cap, largest first. Equal caps keep their
// input order.
func Sort(records []models.StockRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarketCap > records[j].MarketCap
	})
}

func first(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return models.Float(*v)
		}
	}
	return nil
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
