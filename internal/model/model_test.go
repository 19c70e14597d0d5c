package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stumpModel builds a two-class model with one stump per class splitting on
// feature 0 at threshold 50.
func stumpModel() *GradientBoostedModel {
	return &GradientBoostedModel{
		target:       "flare_day",
		featureNames: []string{"f0", "f1", "f2"},
		classes:      []int{0, 1},
		baseScores:   []float64{0.1, -0.1},
		trees: []tree{
			{classIndex: 0, nodes: []node{
				{feature: 0, threshold: 50, left: 1, right: 2},
				{left: -1, value: 1.5},
				{left: -1, value: -1.5},
			}},
			{classIndex: 1, nodes: []node{
				{feature: 0, threshold: 50, left: 1, right: 2},
				{left: -1, value: -1.5},
				{left: -1, value: 1.5},
			}},
		},
	}
}

func TestPredict_ProbabilitiesSumToOne(t *testing.T) {
	m := stumpModel()
	probs, err := m.Predict([]float64{10, 0, 0})
	require.NoError(t, err)
	require.Len(t, probs, 2)

	sum := probs[0] + probs[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestPredict_RoutesOnThreshold(t *testing.T) {
	m := stumpModel()

	low, err := m.Predict([]float64{10, 0, 0})
	require.NoError(t, err)
	high, err := m.Predict([]float64{90, 0, 0})
	require.NoError(t, err)

	// Below the threshold class 0 dominates; above it class 1 does.
	assert.Greater(t, low[0], low[1])
	assert.Greater(t, high[1], high[0])
}

func TestPredict_ThresholdBoundaryGoesLeft(t *testing.T) {
	m := stumpModel()
	probs, err := m.Predict([]float64{50, 0, 0})
	require.NoError(t, err)
	assert.Greater(t, probs[0], probs[1])
}

func TestPredict_WidthMismatch(t *testing.T) {
	m := stumpModel()
	_, err := m.Predict([]float64{1, 2})
	require.Error(t, err)

	var mismatch *FeatureMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Reason, "2 fields")
}

func TestPredict_Deterministic(t *testing.T) {
	m := stumpModel()
	a, err := m.Predict([]float64{42, 1, 2})
	require.NoError(t, err)
	b, err := m.Predict([]float64{42, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClasses_ReturnsCopy(t *testing.T) {
	m := stumpModel()
	classes := m.Classes()
	classes[0] = 99
	assert.Equal(t, []int{0, 1}, m.Classes())
}
