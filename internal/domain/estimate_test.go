package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEstimateEnvironmental_Deterministic(t *testing.T) {
	day := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	a := EstimateEnvironmental("zip_60601", day)
	b := EstimateEnvironmental("zip_60601", day)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated estimate differs (-first +second):\n%s", diff)
	}
}

func TestEstimateEnvironmental_Fields(t *testing.T) {
	day := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	rec := EstimateEnvironmental("zip_60601", day)

	assert.True(t, rec.Estimated)
	assert.Equal(t, "zip_60601", rec.LocationID)
	assert.Equal(t, "2026-04-15", rec.Date)
	assert.Equal(t, "spring", rec.Season)
	assert.Equal(t, "Wednesday", rec.DayOfWeek)
	assert.Equal(t, 4, rec.Month)
	assert.NotNil(t, rec.PollenTree)
	assert.Positive(t, rec.AQI)
	assert.Greater(t, rec.TempMax, rec.TempMin)
}

func TestEstimateEnvironmental_VariesAcrossDays(t *testing.T) {
	a := EstimateEnvironmental("x", time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	b := EstimateEnvironmental("x", time.Date(2026, 4, 16, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, a.AQI, b.AQI)
}

func TestEstimateEnvironmental_WeekdayOffsetStableAcrossMonths(t *testing.T) {
	// Both Mondays, both winter: the ramp must give them the same offset even
	// though the month boundary sits between them.
	a := EstimateEnvironmental("x", time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC))
	b := EstimateEnvironmental("x", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Monday", a.DayOfWeek)
	assert.Equal(t, "Monday", b.DayOfWeek)
	assert.Equal(t, a.AQI, b.AQI)
	assert.Equal(t, a.Humidity, b.Humidity)
}

func TestEstimateEnvironmental_SpringPollenBump(t *testing.T) {
	spring := EstimateEnvironmental("x", time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	winter := EstimateEnvironmental("x", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Greater(t, PollenTotal(spring), PollenTotal(winter))
}
