package domain

import "time"

// DayFormat is the canonical calendar-day key used across stores and joins.
const DayFormat = "2006-01-02"

// DayKey formats a time as a calendar-day key in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// ParseDay parses a YYYY-MM-DD calendar-day key.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, s, time.UTC)
}

// Profile holds the slowly-changing per-user attributes. Height and weight are
// stored as the free-form strings the user typed; parsed forms are derived on
// demand. A profile is immutable for the duration of a forecast run.
type Profile struct {
	Height         string   `json:"height,omitempty" bson:"height,omitempty"`
	Weight         string   `json:"weight,omitempty" bson:"weight,omitempty"`
	Age            int      `json:"age,omitempty" bson:"age,omitempty"`
	AsthmaSeverity string   `json:"asthmaSeverity,omitempty" bson:"asthmaSeverity,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
	ZipCode        string   `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
}

// CheckIn is one user's self-report for a single calendar day. Severities are
// ordinal 0–3; ExerciseMinutes is non-negative. At most one check-in exists
// per user per day.
type CheckIn struct {
	Date            time.Time `json:"date" bson:"date"`
	Wheeze          int       `json:"wheeze" bson:"wheeze"`
	Cough           int       `json:"cough" bson:"cough"`
	ChestTightness  int       `json:"chestTightness" bson:"chestTightness"`
	ExerciseMinutes int       `json:"exerciseMinutes" bson:"exerciseMinutes"`
}

// User pairs a profile with its append-only, date-ordered check-in history.
type User struct {
	ID       string    `json:"user_id" bson:"_id"`
	Profile  Profile   `json:"profile" bson:"profile"`
	CheckIns []CheckIn `json:"checkIns,omitempty" bson:"checkIns,omitempty"`
}

// EnvironmentalRecord is one daily environmental row for a location, as
// written by the external ingestion process. Pollen counts are nullable
// because the pollen provider covers fewer locations than the weather one.
type EnvironmentalRecord struct {
	LocationID  string   `json:"location_id" bson:"location_id"`
	Date        string   `json:"date" bson:"date"`
	AQI         float64  `json:"AQI" bson:"AQI"`
	PM25Mean    float64  `json:"PM2_5_mean" bson:"PM2_5_mean"`
	PM25Max     float64  `json:"PM2_5_max" bson:"PM2_5_max"`
	PollenTree  *float64 `json:"pollen_tree,omitempty" bson:"pollen_tree,omitempty"`
	PollenGrass *float64 `json:"pollen_grass,omitempty" bson:"pollen_grass,omitempty"`
	PollenWeed  *float64 `json:"pollen_weed,omitempty" bson:"pollen_weed,omitempty"`
	TempMin     float64  `json:"temp_min" bson:"temp_min"`
	TempMax     float64  `json:"temp_max" bson:"temp_max"`
	Humidity    float64  `json:"humidity" bson:"humidity"`
	Wind        float64  `json:"wind" bson:"wind"`
	Rain        float64  `json:"rain" bson:"rain"`
	Pressure    float64  `json:"pressure" bson:"pressure"`
	DayOfWeek   string   `json:"day_of_week" bson:"day_of_week"`
	Month       int      `json:"month" bson:"month"`
	Season      string   `json:"season" bson:"season"`
	HolidayFlag bool     `json:"holiday_flag" bson:"holiday_flag"`

	// Estimated marks a row synthesized by EstimateEnvironmental because no
	// real forecast existed for the date. Never persisted.
	Estimated bool `json:"-" bson:"-"`
}

// RiskTier is the coarse bucket shown to users.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierModerate RiskTier = "moderate"
	TierHigh     RiskTier = "high"
)

// TierFor buckets a display score: <=2 low, <=4 moderate, else high.
func TierFor(score float64) RiskTier {
	switch {
	case score <= 2:
		return TierLow
	case score <= 4:
		return TierModerate
	default:
		return TierHigh
	}
}

// PredictionRecord is one cached forecast day for one user, keyed by
// (user_id, date). Last write wins; staleness is judged by UpdatedAt at the
// call site, not by the cache.
type PredictionRecord struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Date        string    `json:"date" bson:"date"`
	Target      string    `json:"target" bson:"target"`
	Score       float64   `json:"score" bson:"score"`
	Probability float64   `json:"probability" bson:"probability"`
	Tier        RiskTier  `json:"tier" bson:"tier"`
	Degraded    bool      `json:"degraded,omitempty" bson:"degraded,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
