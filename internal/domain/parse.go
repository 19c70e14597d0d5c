package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// feetInchesRe parses imperial heights: 5'10", 5 ft 10, 5'
	feetInchesRe = regexp.MustCompile(`^(\d+)\s*(?:'|ft)\s*(\d+(?:\.\d+)?)?\s*(?:"|in)?$`)

	// numberUnitRe parses a leading number with an optional trailing unit.
	numberUnitRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]*)\.?$`)
)

const (
	cmPerInch   = 2.54
	lbPerKg     = 2.20462
	bmiConstant = 703.0 // imperial BMI factor: lb·in⁻² → kg·m⁻²
)

// ParseHeightInches converts a free-form height string to inches.
// Accepted forms: 5'10", "5 ft 10", "70 in", "70", "173 cm", "1.73 m".
// Returns (0, false) for anything it cannot parse; it never errors so BMI
// derivation stays total.
func ParseHeightInches(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	if m := feetInchesRe.FindStringSubmatch(s); m != nil {
		feet, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		inches := 0.0
		if m[2] != "" {
			if inches, err = strconv.ParseFloat(m[2], 64); err != nil {
				return 0, false
			}
		}
		return feet*12 + inches, true
	}

	m := numberUnitRe.FindStringSubmatch(strings.ReplaceAll(s, " ", ""))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "", "in", "inch", "inches":
		return v, true
	case "cm":
		return v / cmPerInch, true
	case "m":
		return v * 100 / cmPerInch, true
	default:
		return 0, false
	}
}

// ParseWeightPounds converts a free-form weight string to pounds.
// Accepted forms: "170 lbs", "170lb", "170", "68 kg".
// Returns (0, false) for anything it cannot parse.
func ParseWeightPounds(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	m := numberUnitRe.FindStringSubmatch(strings.ReplaceAll(s, " ", ""))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "", "lb", "lbs", "pound", "pounds":
		return v, true
	case "kg", "kgs":
		return v * lbPerKg, true
	default:
		return 0, false
	}
}

// DeriveBMI computes body mass index from the profile's free-form height and
// weight. Returns nil when either field is missing or unparsable.
func DeriveBMI(p Profile) *float64 {
	heightIn, okH := ParseHeightInches(p.Height)
	weightLb, okW := ParseWeightPounds(p.Weight)
	if !okH || !okW || heightIn <= 0 {
		return nil
	}
	bmi := bmiConstant * weightLb / (heightIn * heightIn)
	return &bmi
}

// SeverityLevel encodes the categorical asthma severity as an ordinal:
// none 0, mild 1, moderate 2, severe 3. Unknown values map to 0.
func SeverityLevel(severity string) int {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "mild", "intermittent":
		return 1
	case "moderate", "persistent":
		return 2
	case "severe":
		return 3
	default:
		return 0
	}
}
