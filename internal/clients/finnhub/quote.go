package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

type quoteResponse struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          float64  `json:"h"`
	Low           float64  `json:"l"`
	Open          float64  `json:"o"`
	PreviousClose float64  `json:"pc"`
	Timestamp     int64    `json:"t"`
}

// GetQuote retrieves the current quote for a symbol.
// Unknown symbols come back as price 0 with a null change and map to ErrNoData.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}

	quote := &models.Quote{
		Symbol:        symbol,
		Current:       resp.Current,
		Change:        resp.Change,
		ChangePercent: resp.ChangePercent,
		High:          resp.High,
		Low:           resp.Low,
		Open:          resp.Open,
		PreviousClose: resp.PreviousClose,
	}
	if resp.Timestamp > 0 {
		quote.Timestamp = time.Unix(resp.Timestamp, 0).UTC()
	}

	if !quote.Tradeable() {
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrNoData)
	}
	return quote, nil
}

type metricResponse struct {
	Metric map[string]interface{} `json:"metric"`
}

// GetMetrics retrieves the full fundamental-metrics set for a symbol.
// Non-numeric values are ignored.
func (c *Client) GetMetrics(ctx context.Context, symbol string) (*models.Metrics, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("metric", "all")

	var resp metricResponse
	if err := c.get(ctx, "/stock/metric", params, &resp); err != nil {
		return nil, fmt.Errorf("metrics %s: %w", symbol, err)
	}

	m := resp.Metric
	return &models.Metrics{
		Symbol:                       symbol,
		PETTM:                        number(m, "peTTM"),
		PEBasicExclExtraTTM:          number(m, "peBasicExclExtraTTM"),
		EPSTTM:                       number(m, "epsTTM"),
		EPSBasicExclExtraItemsTTM:    number(m, "epsBasicExclExtraItemsTTM"),
		MarketCapitalization:         number(m, "marketCapitalization"),
		WeekHigh52:                   number(m, "52WeekHigh"),
		WeekLow52:                    number(m, "52WeekLow"),
		TenDayAverageVolume:          number(m, "10DayAverageTradingVolume"),
		ThreeMonthAverageVolume:      number(m, "3MonthAverageTradingVolume"),
		EBITDATTM:                    number(m, "ebitdaTTM"),
		DividendYieldIndicatedAnnual: number(m, "dividendYieldIndicatedAnnual"),
		CurrentDividendYieldTTM:      number(m, "currentDividendYieldTTM"),
	}, nil
}

func number(m map[string]interface{}, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}
