package models

import "time"

// Quote is a provider's current price snapshot for one symbol.
// Change and ChangePercent are nil when the provider returned null.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Current       float64   `json:"current"`
	Change        *float64  `json:"change"`
	ChangePercent *float64  `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previousClose"`
	Timestamp     time.Time `json:"timestamp"`
}

// Tradeable reports whether the quote describes a real, traded symbol.
// The provider answers unknown symbols with price 0 and a null change.
func (q *Quote) Tradeable() bool {
	if q == nil {
		return false
	}
	return q.Current != 0 || q.Change != nil
}

// Metrics is a provider's fundamental-ratio snapshot for one symbol.
// Market cap and EBITDA are in millions of USD; volumes in millions of shares.
type Metrics struct {
	Symbol                       string   `json:"symbol"`
	PETTM                        *float64 `json:"peTTM"`
	PEBasicExclExtraTTM          *float64 `json:"peBasicExclExtraTTM"`
	EPSTTM                       *float64 `json:"epsTTM"`
	EPSBasicExclExtraItemsTTM    *float64 `json:"epsBasicExclExtraItemsTTM"`
	MarketCapitalization         *float64 `json:"marketCapitalization"`
	WeekHigh52                   *float64 `json:"52WeekHigh"`
	WeekLow52                    *float64 `json:"52WeekLow"`
	TenDayAverageVolume          *float64 `json:"10DayAverageTradingVolume"`
	ThreeMonthAverageVolume      *float64 `json:"3MonthAverageTradingVolume"`
	EBITDATTM                    *float64 `json:"ebitdaTTM"`
	DividendYieldIndicatedAnnual *float64 `json:"dividendYieldIndicatedAnnual"`
	CurrentDividendYieldTTM      *float64 `json:"currentDividendYieldTTM"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceHistory is the response envelope for a symbol's candles.
type PriceHistory struct {
	Symbol  string    `json:"symbol"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Candles []Candle  `json:"candles"`
	Source  string    `json:"source"`
	Cached  bool      `json:"cached"`
}

// EarningsEvent is one scheduled or reported earnings release.
type EarningsEvent struct {
	Symbol          string   `json:"symbol"`
	Date            string   `json:"date"`
	Hour            string   `json:"hour"` // bmo, amc, dmh or empty
	Quarter         int      `json:"quarter"`
	Year            int      `json:"year"`
	EPSEstimate     *float64 `json:"epsEstimate"`
	EPSActual       *float64 `json:"epsActual"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
	RevenueActual   *float64 `json:"revenueActual"`
}

// EarningsCalendar is the response envelope for an earnings date range.
type EarningsCalendar struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Events []EarningsEvent `json:"events"`
	Source string          `json:"source"`
	Cached bool            `json:"cached"`
}
