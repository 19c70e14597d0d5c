package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidateUser(t *testing.T) {
	valid := User{
		ID: "user-1",
		CheckIns: []CheckIn{
			{Date: day("2026-02-08"), Wheeze: 2, Cough: 1, ExerciseMinutes: 30},
			{Date: day("2026-02-09"), Wheeze: 1},
		},
	}

	t.Run("valid user", func(t *testing.T) {
		assert.NoError(t, ValidateUser(valid))
	})

	t.Run("empty id", func(t *testing.T) {
		u := valid
		u.ID = ""
		assert.Error(t, ValidateUser(u))
	})

	t.Run("undated check-in", func(t *testing.T) {
		u := valid
		u.CheckIns = []CheckIn{{Wheeze: 1}}
		assert.Error(t, ValidateUser(u))
	})

	t.Run("duplicate day", func(t *testing.T) {
		u := valid
		u.CheckIns = []CheckIn{
			{Date: day("2026-02-08")},
			{Date: day("2026-02-08")},
		}
		err := ValidateUser(u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("severity out of range", func(t *testing.T) {
		u := valid
		u.CheckIns = []CheckIn{{Date: day("2026-02-08"), Wheeze: 4}}
		assert.Error(t, ValidateUser(u))
	})

	t.Run("negative exercise minutes", func(t *testing.T) {
		u := valid
		u.CheckIns = []CheckIn{{Date: day("2026-02-08"), ExerciseMinutes: -1}}
		assert.Error(t, ValidateUser(u))
	})
}

func TestPredictionID(t *testing.T) {
	a := PredictionID("user-1", "2026-02-09")
	b := PredictionID("user-1", "2026-02-09")
	c := PredictionID("user-1", "2026-02-10")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, len(a) > len("pred-"))
	assert.Contains(t, a, "pred-")
}
