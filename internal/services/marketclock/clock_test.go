package marketclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockdash/internal/common"
)

func ny(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

func TestFallback_RegularHours(t *testing.T) {
	c := NewFallback()
	require.True(t, c.Fallback())

	// 2026-10-14 is a Wednesday
	assert.False(t, c.IsOpen(ny(t, 2026, 10, 14, 9, 29)))
	assert.True(t, c.IsOpen(ny(t, 2026, 10, 14, 9, 30)))
	assert.True(t, c.IsOpen(ny(t, 2026, 10, 14, 15, 59)))
	assert.False(t, c.IsOpen(ny(t, 2026, 10, 14, 16, 0)))

	// Saturday
	assert.False(t, c.IsOpen(ny(t, 2026, 10, 17, 12, 0)))
	assert.False(t, c.IsTradingDay(ny(t, 2026, 10, 17, 12, 0)))
	assert.True(t, c.IsTradingDay(ny(t, 2026, 10, 14, 12, 0)))
}

func TestFallback_ConvertsTimezone(t *testing.T) {
	c := NewFallback()
	noonNY := ny(t, 2026, 10, 14, 12, 0)
	assert.True(t, c.IsOpen(noonNY.UTC()))
}

func TestExchangeCalendar(t *testing.T) {
	c := New(DefaultMIC, common.NewSilentLogger())
	if c.Fallback() {
		t.Skip("xnys calendar unavailable")
	}

	assert.True(t, c.IsOpen(ny(t, 2026, 10, 14, 11, 0)))
	assert.False(t, c.IsOpen(ny(t, 2026, 10, 14, 20, 0)))
	assert.False(t, c.IsOpen(ny(t, 2026, 10, 17, 11, 0)))

	// Christmas Day is an NYSE holiday
	assert.False(t, c.IsTradingDay(ny(t, 2026, 12, 25, 11, 0)))
	assert.False(t, c.IsOpen(ny(t, 2026, 12, 25, 11, 0)))
}
