// Package mock generates synthetic demo data served when the live provider
// is unavailable. Values are random within plausible ranges and are never
// cached.
package mock

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/assembler"
)

// Message is shown alongside mock data.
const Message = "Using demo data: live market data is temporarily unavailable"

// Stocks returns a synthetic record for every symbol, sorted by market cap.
func Stocks(symbols []string, ref interfaces.SymbolReference) []models.StockRecord {
	records := make([]models.StockRecord, 0, len(symbols))
	for _, sym := range symbols {
		records = append(records, stock(sym, ref))
	}
	assembler.Sort(records)
	return records
}

func stock(symbol string, ref interfaces.SymbolReference) models.StockRecord {
	price := between(20, 500)
	changePct := between(-3, 3)
	change := price * changePct / 100
	pe := between(10, 40)
	marketCap := between(10e9, 3e12)
	volume := between(1e6, 50e6)

	rec := models.StockRecord{
		Symbol:        symbol,
		Name:          symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(changePct),
		DayHigh:       round2(price * between(1.0, 1.02)),
		DayLow:        round2(price * between(0.98, 1.0)),
		YearHigh:      round2(price * between(1.05, 1.4)),
		YearLow:       round2(price * between(0.6, 0.95)),
		Volume:        math.Round(volume),
		AvgVolume:     math.Round(volume * between(0.8, 1.2)),
		MarketCap:     math.Round(marketCap),
		PE:            models.Float(round2(pe)),
		EPS:           models.Float(round2(price / pe)),
		EBITDA:        models.Float(math.Round(marketCap * between(0.03, 0.1))),
		Sector:        assembler.DefaultSector,
		Exchange:      assembler.DefaultExchange,
	}
	if rand.Float64() < 0.7 {
		rec.DividendYield = models.Float(round2(between(0.2, 3.5)))
	}

	if ref != nil {
		if meta, ok := ref.Lookup(symbol); ok {
			rec.Name = meta.Name
			rec.Sector = meta.Sector
			rec.Industry = meta.Industry
			if meta.Exchange != "" {
				rec.Exchange = meta.Exchange
			}
		}
	}
	return rec
}

// Candles returns a daily random walk with one bar per weekday in [from, to].
func Candles(symbol string, from, to time.Time) []models.Candle {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var candles []models.Candle
	price := between(50, 400)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		open := price
		closePx := math.Max(1, open*(1+between(-0.025, 0.025)))
		high := math.Max(open, closePx) * between(1.0, 1.015)
		low := math.Min(open, closePx) * between(0.985, 1.0)
		candles = append(candles, models.Candle{
			Time:   d,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closePx),
			Volume: math.Round(between(1e6, 40e6)),
		})
		price = closePx
	}
	return candles
}

// Earnings returns a handful of events for symbols, dated inside [from, to]
// and ordered by date.
func Earnings(symbols []string, from, to time.Time) []models.EarningsEvent {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) || len(symbols) == 0 {
		return []models.EarningsEvent{}
	}
	days := int(end.Sub(start).Hours()/24) + 1

	n := len(symbols)
	if n > 8 {
		n = 8
	}
	hours := []string{"bmo", "amc"}

	events := make([]models.EarningsEvent, 0, n)
	for _, i := range rand.Perm(len(symbols))[:n] {
		date := start.AddDate(0, 0, rand.IntN(days))
		eps := between(0.2, 5)
		rev := between(1e9, 100e9)
		events = append(events, models.EarningsEvent{
			Symbol:          symbols[i],
			Date:            date.Format("2006-01-02"),
			Hour:            hours[rand.IntN(len(hours))],
			Quarter:         (int(date.Month())-1)/3 + 1,
			Year:            date.Year(),
			EPSEstimate:     models.Float(round2(eps)),
			RevenueEstimate: models.Float(math.Round(rev)),
		})
	}
	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Date < events[b].Date
	})
	return events
}

func between(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
