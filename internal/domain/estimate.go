package domain

import "time"

// EstimateEnvironmental synthesizes a best-effort environmental row for a date
// with no real forecast. Values follow seasonal baselines plus a small
// day-of-week ramp so consecutive estimated days are not identical. The output
// is a pure function of (locationID, day) — repeated calls are byte-identical —
// and is always marked Estimated so callers can flag the day degraded.
func EstimateEnvironmental(locationID string, day time.Time) EnvironmentalRecord {
	day = day.UTC()
	// j in [0,1) is keyed on the epoch day, so each day of the week carries a
	// stable offset that does not jump at month boundaries.
	j := float64(day.Unix()/86400%7) / 7.0

	season := SeasonFor(day.Month())
	base := seasonalBaseline(season)

	rec := EnvironmentalRecord{
		LocationID:  locationID,
		Date:        DayKey(day),
		AQI:         base.aqi + 30*j,
		PM25Mean:    base.pm25 + 8*j,
		PM25Max:     (base.pm25 + 8*j) * 1.4,
		TempMin:     base.tempMin + 3*j,
		TempMax:     base.tempMax + 5*j,
		Humidity:    55 + 20*j,
		Wind:        5 + 5*j,
		Rain:        0,
		Pressure:    1013,
		DayOfWeek:   day.Weekday().String(),
		Month:       int(day.Month()),
		Season:      season,
		HolidayFlag: HolidayFlag(day),
		Estimated:   true,
	}

	pollen := base.pollen + 4*j
	third := pollen / 3
	rec.PollenTree = &third
	rec.PollenGrass = &third
	rec.PollenWeed = &third
	return rec
}

type baseline struct {
	aqi     float64
	pm25    float64
	tempMin float64
	tempMax float64
	pollen  float64
}

// seasonalBaseline holds rough mid-latitude defaults per season. Spring gets
// the pollen bump; winter the particulate one (heating season).
func seasonalBaseline(season string) baseline {
	switch season {
	case "winter":
		return baseline{aqi: 45, pm25: 12, tempMin: 2, tempMax: 10, pollen: 1}
	case "spring":
		return baseline{aqi: 40, pm25: 9, tempMin: 8, tempMax: 18, pollen: 12}
	case "summer":
		return baseline{aqi: 50, pm25: 11, tempMin: 14, tempMax: 26, pollen: 6}
	default: // fall
		return baseline{aqi: 42, pm25: 10, tempMin: 7, tempMax: 17, pollen: 4}
	}
}
