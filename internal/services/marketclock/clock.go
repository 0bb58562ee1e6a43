// Package marketclock reports NYSE trading hours for the refresh scheduler
package marketclock

import (
	"time"

	"github.com/scmhub/calendar"

	"github.com/bobmcallan/stockdash/internal/common"
)

// DefaultMIC is the exchange whose hours gate scheduled refreshes.
const DefaultMIC = "xnys"

// Clock implements MarketClock. Without an exchange calendar it falls back
// to Mon-Fri 09:30-16:00 America/New_York with no holidays.
type Clock struct {
	cal *calendar.Calendar
	loc *time.Location
}

// New loads the calendar for mic (ISO 10383, e.g. "xnys")
func New(mic string, logger *common.Logger) *Clock {
	if mic == "" {
		mic = DefaultMIC
	}
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &Clock{cal: cal, loc: cal.Loc}
	}

	logger.Warn().Str("mic", mic).Msg("Exchange calendar unavailable, using Mon-Fri 09:30-16:00 New York hours")
	return NewFallback()
}

// NewFallback returns a clock using fixed New York weekday hours
func NewFallback() *Clock {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// Minimal containers may lack tzdata; EST without DST is close enough
		loc = time.FixedZone("EST", -5*60*60)
	}
	return &Clock{loc: loc}
}

// Fallback reports whether the clock is running without an exchange calendar
func (c *Clock) Fallback() bool {
	return c.cal == nil
}

// IsOpen reports whether the exchange is in its regular session at t
func (c *Clock) IsOpen(t time.Time) bool {
	t = t.In(c.loc)
	if !c.IsTradingDay(t) {
		return false
	}
	if c.cal != nil {
		return c.cal.IsOpen(t)
	}

	minutes := t.Hour()*60 + t.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// IsTradingDay reports whether t falls on an exchange business day
func (c *Clock) IsTradingDay(t time.Time) bool {
	t = t.In(c.loc)
	if c.cal != nil {
		return c.cal.IsBusinessDay(t)
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
