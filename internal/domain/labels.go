package domain

// Training label thresholds. These mirror what the deployed model was trained
// against; changing them requires retraining.
const (
	riskSymptomThreshold  = 4
	flareSymptomThreshold = 6
	riskAQIThreshold      = 100.0
	riskPM25Threshold     = 35.0
	riskPollenThreshold   = 20.0
)

// Targets the model can be trained against.
const (
	TargetRisk  = "risk"
	TargetFlare = "flare_day"
)

// ValidTarget reports whether s names a known prediction target.
func ValidTarget(s string) bool {
	return s == TargetRisk || s == TargetFlare
}

// SymptomScore sums the three ordinal symptom severities. With valid inputs
// (each 0–3) the result is bounded in [0, 9]; out-of-range inputs are clamped
// per symptom so a corrupt check-in cannot blow out the score.
func SymptomScore(wheeze, cough, chestTightness int) int {
	return clampSeverity(wheeze) + clampSeverity(cough) + clampSeverity(chestTightness)
}

func clampSeverity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 3 {
		return 3
	}
	return v
}

// PollenTotal sums the three pollen counts, treating missing values as zero.
func PollenTotal(rec EnvironmentalRecord) float64 {
	return floatOrZero(rec.PollenTree) + floatOrZero(rec.PollenGrass) + floatOrZero(rec.PollenWeed)
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// RiskLabel derives the binary training label for the "risk" target:
// high symptoms or high environmental exposure.
func RiskLabel(symptomScore int, rec EnvironmentalRecord) int {
	if symptomScore >= riskSymptomThreshold {
		return 1
	}
	if rec.AQI > riskAQIThreshold || rec.PM25Mean > riskPM25Threshold {
		return 1
	}
	if PollenTotal(rec) > riskPollenThreshold {
		return 1
	}
	return 0
}

// FlareLabel derives the binary training label for the "flare_day" target,
// based on symptoms alone.
func FlareLabel(symptomScore int) int {
	if symptomScore >= flareSymptomThreshold {
		return 1
	}
	return 0
}
