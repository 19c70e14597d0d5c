package feature

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// fieldIndex resolves a layout field name to its vector position.
func fieldIndex(t *testing.T, name string) int {
	t.Helper()
	for i, f := range Layout() {
		if f == name {
			return i
		}
	}
	t.Fatalf("no layout field %q", name)
	return -1
}

func testProfile() domain.Profile {
	return domain.Profile{
		Height:         `5'10"`,
		Weight:         "170 lbs",
		Age:            34,
		AsthmaSeverity: "moderate",
		ZipCode:        "60601",
	}
}

func testEnvRecord(date string) domain.EnvironmentalRecord {
	tree, grass := 8.0, 3.0
	return domain.EnvironmentalRecord{
		LocationID:  "zip_60601",
		Date:        date,
		AQI:         72,
		PM25Mean:    18,
		PM25Max:     31,
		PollenTree:  &tree,
		PollenGrass: &grass,
		TempMin:     40,
		TempMax:     55,
		Humidity:    0.6,
		Wind:        12,
		Rain:        0.1,
		Pressure:    1013,
	}
}

func TestBuild_Deterministic(t *testing.T) {
	checkins := []domain.CheckIn{
		{Date: day("2026-02-08"), Wheeze: 2, Cough: 1, ExerciseMinutes: 20},
		{Date: day("2026-02-09"), Wheeze: 1},
	}
	env := map[string]domain.EnvironmentalRecord{
		"2026-02-09": testEnvRecord("2026-02-09"),
	}

	a := Build("user-1", testProfile(), checkins, env, day("2026-02-09"))
	b := Build("user-1", testProfile(), checkins, env, day("2026-02-09"))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated build differs (-first +second):\n%s", diff)
	}
}

func TestBuild_Width(t *testing.T) {
	v := Build("user-1", testProfile(), nil, nil, day("2026-02-09"))
	assert.Len(t, v.Values, NumFields())
}

func TestBuild_LagJoinsByCalendarDate(t *testing.T) {
	checkins := []domain.CheckIn{
		{Date: day("2026-02-08"), Wheeze: 2},
		{Date: day("2026-02-09"), Wheeze: 1},
	}
	env := map[string]domain.EnvironmentalRecord{
		"2026-02-09": testEnvRecord("2026-02-09"),
		"2026-02-10": testEnvRecord("2026-02-10"),
	}
	wheeze := fieldIndex(t, "wheeze")
	wheezeLag := fieldIndex(t, "wheeze_lag1")
	hasCheckin := fieldIndex(t, "has_checkin")

	t.Run("day with check-in and previous-day check-in", func(t *testing.T) {
		v := Build("user-1", testProfile(), checkins, env, day("2026-02-09"))
		assert.Equal(t, 1.0, v.Values[hasCheckin])
		assert.Equal(t, 1.0, v.Values[wheeze])
		assert.Equal(t, 2.0, v.Values[wheezeLag])
	})

	t.Run("day with neither", func(t *testing.T) {
		v := Build("user-1", testProfile(), checkins, env, day("2026-02-10"))
		assert.Equal(t, 0.0, v.Values[hasCheckin])
		assert.Equal(t, 0.0, v.Values[wheeze])
		// 2026-02-09 has a check-in, so the lag for 02-10 picks it up.
		assert.Equal(t, 1.0, v.Values[wheezeLag])
	})

	t.Run("day two after the last check-in has zero lag", func(t *testing.T) {
		v := Build("user-1", testProfile(), checkins, env, day("2026-02-11"))
		assert.Equal(t, 0.0, v.Values[wheezeLag])
	})
}

func TestBuild_MissingEnvDegrades(t *testing.T) {
	v := Build("user-1", testProfile(), nil, map[string]domain.EnvironmentalRecord{}, day("2026-02-09"))
	assert.True(t, v.Degraded)
	assert.Equal(t, 0.0, v.Values[fieldIndex(t, "AQI")])
	// Calendar signal survives even with no environmental record.
	assert.Equal(t, 2.0, v.Values[fieldIndex(t, "month")])
}

func TestBuild_DerivedTerms(t *testing.T) {
	env := map[string]domain.EnvironmentalRecord{
		"2026-02-09": testEnvRecord("2026-02-09"),
	}
	v := Build("user-1", testProfile(), nil, env, day("2026-02-09"))

	assert.Equal(t, 15.0, v.Values[fieldIndex(t, "temp_range")])
	assert.Equal(t, 11.0, v.Values[fieldIndex(t, "pollen_total")])
	assert.InDelta(t, 18*0.6, v.Values[fieldIndex(t, "pm25_x_humidity")], 1e-9)
	assert.InDelta(t, 11*12, v.Values[fieldIndex(t, "pollen_x_wind")], 1e-9)
	assert.Equal(t, 1.0, v.Values[fieldIndex(t, "pollen_weed_missing")])
	assert.Equal(t, 0.0, v.Values[fieldIndex(t, "pollen_tree_missing")])
}

func TestBuild_ProfileFields(t *testing.T) {
	env := map[string]domain.EnvironmentalRecord{
		"2026-02-09": testEnvRecord("2026-02-09"),
	}
	v := Build("user-1", testProfile(), nil, env, day("2026-02-09"))

	assert.Equal(t, 34.0, v.Values[fieldIndex(t, "age")])
	assert.Equal(t, 70.0, v.Values[fieldIndex(t, "height_in")])
	assert.Equal(t, 170.0, v.Values[fieldIndex(t, "weight_lb")])
	assert.InDelta(t, 24.39, v.Values[fieldIndex(t, "bmi")], 0.01)
	assert.Equal(t, 0.0, v.Values[fieldIndex(t, "bmi_missing")])
	assert.Equal(t, 2.0, v.Values[fieldIndex(t, "asthma_severity")])
}

func TestBuild_UnparsableBMIMarkedMissing(t *testing.T) {
	profile := testProfile()
	profile.Height = "tall"
	v := Build("user-1", profile, nil, nil, day("2026-02-09"))

	assert.Equal(t, 0.0, v.Values[fieldIndex(t, "bmi")])
	assert.Equal(t, 1.0, v.Values[fieldIndex(t, "bmi_missing")])
}

func TestBuildTrainingRow_Labels(t *testing.T) {
	checkins := []domain.CheckIn{
		{Date: day("2026-02-09"), Wheeze: 3, Cough: 2, ChestTightness: 1},
	}
	rec := testEnvRecord("2026-02-09")

	row := BuildTrainingRow("user-1", testProfile(), checkins, rec, day("2026-02-09"))
	// symptom_score = 6: risk and flare both trip.
	assert.Equal(t, 1, row.Risk)
	assert.Equal(t, 1, row.Flare)

	quiet := []domain.CheckIn{{Date: day("2026-02-09"), Wheeze: 1}}
	row = BuildTrainingRow("user-1", testProfile(), quiet, rec, day("2026-02-09"))
	assert.Equal(t, 0, row.Risk)
	assert.Equal(t, 0, row.Flare)
}

func TestLatestOnOrBefore(t *testing.T) {
	checkins := []domain.CheckIn{
		{Date: day("2026-02-05"), Wheeze: 3},
		{Date: day("2026-02-08"), Wheeze: 2},
		{Date: day("2026-02-12"), Wheeze: 1},
	}

	t.Run("picks most recent at or before", func(t *testing.T) {
		got := LatestOnOrBefore(checkins, "2026-02-10")
		require.NotNil(t, got)
		assert.Equal(t, 2, got.Wheeze)
	})

	t.Run("exact day counts", func(t *testing.T) {
		got := LatestOnOrBefore(checkins, "2026-02-08")
		require.NotNil(t, got)
		assert.Equal(t, 2, got.Wheeze)
	})

	t.Run("nothing before", func(t *testing.T) {
		assert.Nil(t, LatestOnOrBefore(checkins, "2026-02-01"))
	})
}
