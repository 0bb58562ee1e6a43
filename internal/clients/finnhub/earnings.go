package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

type earningsResponse struct {
	EarningsCalendar []struct {
		Date            string   `json:"date"`
		EPSActual       *float64 `json:"epsActual"`
		EPSEstimate     *float64 `json:"epsEstimate"`
		Hour            string   `json:"hour"`
		Quarter         int      `json:"quarter"`
		RevenueActual   *float64 `json:"revenueActual"`
		RevenueEstimate *float64 `json:"revenueEstimate"`
		Symbol          string   `json:"symbol"`
		Year            int      `json:"year"`
	} `json:"earningsCalendar"`
}

// GetEarningsCalendar retrieves earnings events between from and to (inclusive dates)
func (c *Client) GetEarningsCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEvent, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var resp earningsResponse
	if err := c.get(ctx, "/calendar/earnings", params, &resp); err != nil {
		return nil, fmt.Errorf("earnings calendar: %w", err)
	}

	events := make([]models.EarningsEvent, 0, len(resp.EarningsCalendar))
	for _, e := range resp.EarningsCalendar {
		if e.Symbol == "" || e.Date == "" {
			continue
		}
		events = append(events, models.EarningsEvent{
			Symbol:          e.Symbol,
			Date:            e.Date,
			Hour:            e.Hour,
			Quarter:         e.Quarter,
			Year:            e.Year,
			EPSEstimate:     e.EPSEstimate,
			EPSActual:       e.EPSActual,
			RevenueEstimate: e.RevenueEstimate,
			RevenueActual:   e.RevenueActual,
		})
	}
	return events, nil
}
