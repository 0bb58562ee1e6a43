package stocks

import (
	"sort"

	"github.com/bobmcallan/stockdash/internal/models"
)

// Sectors aggregates records by sector, largest total market cap first.
// ChangePercent is weighted by market cap; a sector with zero total cap
// gets the plain average.
func Sectors(records []models.StockRecord) []models.SectorSummary {
	type acc struct {
		summary  models.SectorSummary
		weighted float64
		plain    float64
	}
	bySector := map[string]*acc{}
	var order []string

	for _, r := range records {
		a, ok := bySector[r.Sector]
		if !ok {
			a = &acc{summary: models.SectorSummary{Sector: r.Sector}}
			bySector[r.Sector] = a
			order = append(order, r.Sector)
		}
		a.summary.StockCount++
		a.summary.MarketCap += r.MarketCap
		a.weighted += r.ChangePercent * r.MarketCap
		a.plain += r.ChangePercent
	}

	out := make([]models.SectorSummary, 0, len(order))
	for _, name := range order {
		a := bySector[name]
		if a.summary.MarketCap > 0 {
			a.summary.ChangePercent = a.weighted / a.summary.MarketCap
		} else {
			a.summary.ChangePercent = a.plain / float64(a.summary.StockCount)
		}
		out = append(out, a.summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MarketCap > out[j].MarketCap
	})
	return out
}
