package feature

import (
	"time"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// Vector is one fixed-layout feature row for a (user, date). Values are
// ordered exactly as Layout(); Degraded marks rows whose environmental fields
// were zero-filled or estimated because no real record existed for the date.
type Vector struct {
	UserID   string
	Date     string
	Values   []float64
	Degraded bool
}

// TrainingRow pairs a vector with its derived labels. Labels are computed
// only here, when exporting historical data — never on the forecast path.
type TrainingRow struct {
	Vector
	Risk  int `json:"risk"`
	Flare int `json:"flare_day"`
}

// Build produces the vector for (user, date) by joining the three sources on
// calendar date: the check-in dated exactly `date` fills the current-day
// fields, the check-in dated exactly one day earlier fills the lag fields,
// and env[date] fills the environmental fields. Missing check-ins contribute
// zeros; a missing environmental record zero-fills those fields and marks the
// vector degraded. Pure function: identical inputs yield identical output.
func Build(userID string, profile domain.Profile, checkins []domain.CheckIn, env map[string]domain.EnvironmentalRecord, date time.Time) Vector {
	day := domain.DayKey(date)
	rec, found := env[day]
	if !found {
		rec = domain.EnvironmentalRecord{Date: day, Estimated: true}
	}
	current := CheckInOn(checkins, day)
	lag := CheckInOn(checkins, domain.DayKey(date.AddDate(0, 0, -1)))
	return Compose(userID, profile, current, lag, rec, date)
}

// BuildTrainingRow builds the vector for a historical date and attaches the
// derived risk and flare labels.
func BuildTrainingRow(userID string, profile domain.Profile, checkins []domain.CheckIn, rec domain.EnvironmentalRecord, date time.Time) TrainingRow {
	day := domain.DayKey(date)
	current := CheckInOn(checkins, day)
	lag := CheckInOn(checkins, domain.DayKey(date.AddDate(0, 0, -1)))

	score := 0
	if current != nil {
		score = domain.SymptomScore(current.Wheeze, current.Cough, current.ChestTightness)
	}
	return TrainingRow{
		Vector: Compose(userID, profile, current, lag, rec, date),
		Risk:   domain.RiskLabel(score, rec),
		Flare:  domain.FlareLabel(score),
	}
}

// CheckInOn returns the check-in dated exactly `day`, or nil. The join is by
// calendar date, never by list position.
func CheckInOn(checkins []domain.CheckIn, day string) *domain.CheckIn {
	for i := range checkins {
		if domain.DayKey(checkins[i].Date) == day {
			return &checkins[i]
		}
	}
	return nil
}

// LatestOnOrBefore returns the most recent check-in dated on or before `day`,
// or nil. The forecast path uses it as the lag anchor for days whose previous
// calendar day lies in the future.
func LatestOnOrBefore(checkins []domain.CheckIn, day string) *domain.CheckIn {
	var latest *domain.CheckIn
	var latestDay string
	for i := range checkins {
		d := domain.DayKey(checkins[i].Date)
		if d > day {
			continue
		}
		if latest == nil || d > latestDay {
			latest = &checkins[i]
			latestDay = d
		}
	}
	return latest
}

// Compose assembles the vector from already-resolved inputs. Current and lag
// may be nil (zero contribution). A record marked Estimated flags the vector
// degraded; calendar fields are still derived from the date so estimated days
// keep their day-of-week and season signal.
func Compose(userID string, profile domain.Profile, current, lag *domain.CheckIn, rec domain.EnvironmentalRecord, date time.Time) Vector {
	rec.Date = domain.DayKey(date)
	rec = domain.FillCalendar(rec)

	v := Vector{
		UserID:   userID,
		Date:     rec.Date,
		Values:   make([]float64, 0, NumFields()),
		Degraded: rec.Estimated,
	}

	pollenTotal := domain.PollenTotal(rec)
	v.push(
		rec.AQI,
		rec.PM25Mean,
		rec.PM25Max,
		nullableValue(rec.PollenTree),
		nullableValue(rec.PollenGrass),
		nullableValue(rec.PollenWeed),
		nullableMissing(rec.PollenTree),
		nullableMissing(rec.PollenGrass),
		nullableMissing(rec.PollenWeed),
		rec.TempMin,
		rec.TempMax,
		rec.Humidity,
		rec.Wind,
		rec.Rain,
		rec.Pressure,
		float64(domain.WeekdayLevel(rec.DayOfWeek)),
		float64(rec.Month),
		float64(domain.SeasonLevel(rec.Season)),
		boolField(rec.HolidayFlag),
	)

	// Derived interaction terms.
	v.push(
		rec.TempMax-rec.TempMin,
		pollenTotal,
		rec.PM25Mean*rec.Humidity,
		pollenTotal*rec.Wind,
	)

	// Profile.
	heightIn, _ := domain.ParseHeightInches(profile.Height)
	weightLb, _ := domain.ParseWeightPounds(profile.Weight)
	bmi := domain.DeriveBMI(profile)
	bmiValue, bmiMissing := 0.0, 1.0
	if bmi != nil {
		bmiValue, bmiMissing = *bmi, 0
	}
	v.push(
		float64(profile.Age),
		heightIn,
		weightLb,
		bmiValue,
		bmiMissing,
		float64(domain.SeverityLevel(profile.AsthmaSeverity)),
	)

	// Current-day check-in.
	if current != nil {
		score := domain.SymptomScore(current.Wheeze, current.Cough, current.ChestTightness)
		v.push(1,
			float64(current.Wheeze),
			float64(current.Cough),
			float64(current.ChestTightness),
			float64(current.ExerciseMinutes),
			float64(score),
		)
	} else {
		v.push(0, 0, 0, 0, 0, 0)
	}

	// Previous-calendar-day lags.
	if lag != nil {
		score := domain.SymptomScore(lag.Wheeze, lag.Cough, lag.ChestTightness)
		v.push(
			float64(lag.Wheeze),
			float64(lag.Cough),
			float64(lag.ChestTightness),
			float64(lag.ExerciseMinutes),
			float64(score),
		)
	} else {
		v.push(0, 0, 0, 0, 0)
	}

	return v
}

func (v *Vector) push(values ...float64) {
	v.Values = append(v.Values, values...)
}

func nullableValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func nullableMissing(p *float64) float64 {
	if p == nil {
		return 1
	}
	return 0
}

func boolField(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
