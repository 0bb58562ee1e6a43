package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

type candleResponse struct {
	Close     []float64 `json:"c"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Open      []float64 `json:"o"`
	Status    string    `json:"s"`
	Timestamp []int64   `json:"t"`
	Volume    []float64 `json:"v"`
}

// GetCandles retrieves OHLCV bars between from and to, oldest first.
// A no_data response maps to ErrNoData.
func (c *Client) GetCandles(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	var resp candleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}

	if resp.Status != "ok" {
		return nil, fmt.Errorf("candles %s: %w", symbol, ErrNoData)
	}

	// Arrays are parallel; trust only the common prefix
	n := len(resp.Timestamp)
	for _, l := range []int{len(resp.Open), len(resp.High), len(resp.Low), len(resp.Close)} {
		if l < n {
			n = l
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("candles %s: %w", symbol, ErrNoData)
	}

	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = models.Candle{
			Time:  time.Unix(resp.Timestamp[i], 0).UTC(),
			Open:  resp.Open[i],
			High:  resp.High[i],
			Low:   resp.Low[i],
			Close: resp.Close[i],
		}
		if i < len(resp.Volume) {
			candles[i].Volume = resp.Volume[i]
		}
	}
	return candles, nil
}
