// Package feature builds the fixed-width vectors consumed by the risk model.
//
// The layout — field names, order, and count — is the contract between this
// service and the externally trained model artifact. It is versioned: any
// change to the list below must bump LayoutVersion, and artifacts trained
// against a different version are rejected at load time rather than silently
// truncated or padded.
package feature

// LayoutVersion identifies the current field layout. Bump on any change to
// layoutFields.
const LayoutVersion = 1

// layoutFields is the canonical field order. Environmental fields first, then
// derived interaction terms, profile fields, current-day check-in fields, and
// the previous-calendar-day lag fields.
var layoutFields = []string{
	// Environmental (zero-valued on degraded days).
	"AQI",
	"PM2_5_mean",
	"PM2_5_max",
	"pollen_tree",
	"pollen_grass",
	"pollen_weed",
	"pollen_tree_missing",
	"pollen_grass_missing",
	"pollen_weed_missing",
	"temp_min",
	"temp_max",
	"humidity",
	"wind",
	"rain",
	"pressure",
	"day_of_week",
	"month",
	"season",
	"holiday_flag",

	// Derived environmental terms.
	"temp_range",
	"pollen_total",
	"pm25_x_humidity",
	"pollen_x_wind",

	// Profile.
	"age",
	"height_in",
	"weight_lb",
	"bmi",
	"bmi_missing",
	"asthma_severity",

	// Current-day check-in (zero when the user did not check in).
	"has_checkin",
	"wheeze",
	"cough",
	"chest_tightness",
	"exercise_minutes",
	"symptom_score",

	// Previous-calendar-day lags (zero when that day has no check-in).
	"wheeze_lag1",
	"cough_lag1",
	"chest_tightness_lag1",
	"exercise_minutes_lag1",
	"symptom_score_lag1",
}

// Layout returns the ordered field names. The returned slice is a copy.
func Layout() []string {
	out := make([]string, len(layoutFields))
	copy(out, layoutFields)
	return out
}

// NumFields is the fixed vector width.
func NumFields() int {
	return len(layoutFields)
}
