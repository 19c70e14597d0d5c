package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonFor(t *testing.T) {
	assert.Equal(t, "winter", SeasonFor(time.December))
	assert.Equal(t, "winter", SeasonFor(time.February))
	assert.Equal(t, "spring", SeasonFor(time.April))
	assert.Equal(t, "summer", SeasonFor(time.July))
	assert.Equal(t, "fall", SeasonFor(time.October))
}

func TestSeasonLevel(t *testing.T) {
	assert.Equal(t, 0, SeasonLevel("winter"))
	assert.Equal(t, 1, SeasonLevel("spring"))
	assert.Equal(t, 2, SeasonLevel("summer"))
	assert.Equal(t, 3, SeasonLevel("fall"))
	assert.Equal(t, 0, SeasonLevel("monsoon"))
}

func TestWeekdayLevel(t *testing.T) {
	assert.Equal(t, 0, WeekdayLevel("Sunday"))
	assert.Equal(t, 3, WeekdayLevel("Wednesday"))
	assert.Equal(t, 6, WeekdayLevel("Saturday"))
	assert.Equal(t, 0, WeekdayLevel("someday"))
}

func TestHolidayFlag(t *testing.T) {
	assert.True(t, HolidayFlag(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, HolidayFlag(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, HolidayFlag(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, HolidayFlag(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
}

func TestFillCalendar(t *testing.T) {
	t.Run("fills unset fields from date", func(t *testing.T) {
		rec := FillCalendar(EnvironmentalRecord{Date: "2026-02-09"})
		assert.Equal(t, "Monday", rec.DayOfWeek)
		assert.Equal(t, 2, rec.Month)
		assert.Equal(t, "winter", rec.Season)
	})

	t.Run("keeps ingested values", func(t *testing.T) {
		rec := FillCalendar(EnvironmentalRecord{Date: "2026-02-09", DayOfWeek: "Tuesday", Month: 3, Season: "spring"})
		assert.Equal(t, "Tuesday", rec.DayOfWeek)
		assert.Equal(t, 3, rec.Month)
		assert.Equal(t, "spring", rec.Season)
	})

	t.Run("unparsable date left alone", func(t *testing.T) {
		rec := FillCalendar(EnvironmentalRecord{Date: "not-a-date"})
		assert.Empty(t, rec.DayOfWeek)
	})
}
