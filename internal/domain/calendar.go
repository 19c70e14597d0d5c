package domain

import "time"

// SeasonFor maps a month to its Northern Hemisphere season.
func SeasonFor(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

// SeasonLevel encodes a season name as an ordinal for the feature layout:
// winter 0, spring 1, summer 2, fall 3. Unknown values map to 0.
func SeasonLevel(season string) int {
	switch season {
	case "spring":
		return 1
	case "summer":
		return 2
	case "fall":
		return 3
	default:
		return 0
	}
}

// WeekdayLevel encodes a day-of-week name as time.Weekday's ordinal
// (Sunday 0 … Saturday 6). Unknown values map to 0.
func WeekdayLevel(dayOfWeek string) int {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == dayOfWeek {
			return int(wd)
		}
	}
	return 0
}

// HolidayFlag reports whether the date is a fixed-date US holiday. Floating
// holidays are intentionally omitted; the ingestion process uses the same
// simplification.
func HolidayFlag(t time.Time) bool {
	switch {
	case t.Month() == time.January && t.Day() == 1:
		return true
	case t.Month() == time.July && t.Day() == 4:
		return true
	case t.Month() == time.December && t.Day() == 25:
		return true
	default:
		return false
	}
}

// FillCalendar populates the calendar-derived fields of an environmental row
// from its date when the ingestion process left them unset.
func FillCalendar(rec EnvironmentalRecord) EnvironmentalRecord {
	t, err := ParseDay(rec.Date)
	if err != nil {
		return rec
	}
	if rec.DayOfWeek == "" {
		rec.DayOfWeek = t.Weekday().String()
	}
	if rec.Month == 0 {
		rec.Month = int(t.Month())
	}
	if rec.Season == "" {
		rec.Season = SeasonFor(t.Month())
	}
	return rec
}
