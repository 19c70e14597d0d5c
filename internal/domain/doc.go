// Package domain models the data joined by the asthma risk forecast pipeline:
// user profiles, daily symptom check-ins, and location-keyed environmental rows.
//
// # Data Sources
//
// Environmental daily rows are produced by an external ingestion process that
// aggregates Open-Meteo weather and air-quality pulls plus pollen counts into
// one document per (location_id, date). This service only reads them.
//
// Profiles and check-ins are owned by the web application. A profile changes
// rarely; check-ins arrive irregularly, at most one per user per calendar day,
// with gaps on missed days.
//
// # Conventions
//
// Location identifiers:
//
//	"lat,lon" coordinates round to 4 decimal places and join with "_":
//	  37.7749, -122.4194  →  "37.7749_-122.4194"
//	5-digit ZIP codes prefix with "zip_":
//	  "94103"  →  "zip_94103"
//	Anything else resolves to "unknown".
//
// Profile height and weight are free-form strings entered by the user:
//
//	Height: `5'10"` (feet'inches), "70 in", "173 cm", "1.73 m"
//	Weight: "170 lbs", "170", "68 kg"
//	Unparsable values yield a null BMI, never an error.
//
// Symptom severities (wheeze, cough, chest tightness) are ordinal 0–3.
// The symptom score is their sum, bounded in [0, 9].
//
// Season mapping (Northern Hemisphere): Dec–Feb winter, Mar–May spring,
// Jun–Aug summer, Sep–Nov fall.
//
// # Training Labels
//
// Labels are derived only when exporting historical training data, never at
// forecast time:
//
//	risk = 1       iff symptom_score >= 4, AQI > 100, PM2.5 mean > 35,
//	               or total pollen > 20
//	flare_day = 1  iff symptom_score >= 6
//
// # ID Generation
//
// Prediction record IDs are deterministic SHA-256 hashes of user_id|date so
// that re-running a forecast upserts the same document instead of growing the
// cache collection. See [PredictionID].
package domain
