package domain

import "fmt"

// ValidateUser checks the invariants the forecast pipeline relies on: a
// non-empty ID, dated check-ins with at most one per calendar day, ordinal
// severities in 0–3, and non-negative exercise minutes. A failure here means
// the user is skipped for the batch, not that the batch fails.
func ValidateUser(u User) error {
	if u.ID == "" {
		return fmt.Errorf("user has no id")
	}
	seen := make(map[string]struct{}, len(u.CheckIns))
	for i, c := range u.CheckIns {
		if c.Date.IsZero() {
			return fmt.Errorf("check-in %d has no date", i)
		}
		day := DayKey(c.Date)
		if _, dup := seen[day]; dup {
			return fmt.Errorf("duplicate check-in for %s", day)
		}
		seen[day] = struct{}{}
		if err := validateCheckIn(c); err != nil {
			return fmt.Errorf("check-in %s: %w", day, err)
		}
	}
	return nil
}

func validateCheckIn(c CheckIn) error {
	for _, s := range []struct {
		name  string
		value int
	}{
		{"wheeze", c.Wheeze},
		{"cough", c.Cough},
		{"chestTightness", c.ChestTightness},
	} {
		if s.value < 0 || s.value > 3 {
			return fmt.Errorf("%s %d out of range 0-3", s.name, s.value)
		}
	}
	if c.ExerciseMinutes < 0 {
		return fmt.Errorf("exerciseMinutes %d is negative", c.ExerciseMinutes)
	}
	return nil
}
