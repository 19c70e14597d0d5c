package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymptomScore(t *testing.T) {
	assert.Equal(t, 3, SymptomScore(2, 1, 0))
	assert.Equal(t, 0, SymptomScore(0, 0, 0))
	assert.Equal(t, 9, SymptomScore(3, 3, 3))

	// Out-of-range inputs clamp per symptom, so the bound holds for any input.
	assert.Equal(t, 9, SymptomScore(100, 100, 100))
	assert.Equal(t, 0, SymptomScore(-5, -1, 0))
}

func TestRiskLabel(t *testing.T) {
	below := EnvironmentalRecord{AQI: 50, PM25Mean: 10, PollenTree: ptr(5.0)}

	t.Run("high AQI alone triggers", func(t *testing.T) {
		rec := EnvironmentalRecord{AQI: 150, PM25Mean: 10, PollenTree: ptr(5.0)}
		assert.Equal(t, 1, RiskLabel(1, rec))
	})

	t.Run("everything below threshold", func(t *testing.T) {
		assert.Equal(t, 0, RiskLabel(1, below))
	})

	t.Run("symptom score alone triggers", func(t *testing.T) {
		assert.Equal(t, 1, RiskLabel(4, below))
	})

	t.Run("PM2.5 alone triggers", func(t *testing.T) {
		rec := EnvironmentalRecord{AQI: 50, PM25Mean: 36}
		assert.Equal(t, 1, RiskLabel(0, rec))
	})

	t.Run("pollen sum alone triggers", func(t *testing.T) {
		rec := EnvironmentalRecord{AQI: 50, PM25Mean: 10,
			PollenTree: ptr(10.0), PollenGrass: ptr(8.0), PollenWeed: ptr(3.0)}
		assert.Equal(t, 1, RiskLabel(0, rec))
	})

	t.Run("missing pollen counts as zero", func(t *testing.T) {
		rec := EnvironmentalRecord{AQI: 50, PM25Mean: 10}
		assert.Equal(t, 0, RiskLabel(0, rec))
	})
}

func TestFlareLabel(t *testing.T) {
	assert.Equal(t, 0, FlareLabel(5))
	assert.Equal(t, 1, FlareLabel(6))
	assert.Equal(t, 1, FlareLabel(9))
}

func TestPollenTotal(t *testing.T) {
	rec := EnvironmentalRecord{PollenTree: ptr(10.0), PollenWeed: ptr(2.5)}
	assert.Equal(t, 12.5, PollenTotal(rec))
	assert.Equal(t, 0.0, PollenTotal(EnvironmentalRecord{}))
}

func TestValidTarget(t *testing.T) {
	assert.True(t, ValidTarget("risk"))
	assert.True(t, ValidTarget("flare_day"))
	assert.False(t, ValidTarget("wheeze"))
	assert.False(t, ValidTarget(""))
}
