// Package model wraps the externally trained gradient-boosted tree classifier
// behind a fixed score contract. The training algorithm lives outside this
// service; this package only loads a versioned artifact and evaluates it.
package model

import (
	"fmt"
	"math"
)

// Scorer is the contract the orchestrator depends on. Predict is stateless
// given a loaded artifact and safe for concurrent use; it returns calibrated
// class probabilities in [0,1] summing to 1, ordered as Classes().
type Scorer interface {
	Predict(values []float64) ([]float64, error)
	Classes() []int
}

// GradientBoostedModel evaluates a loaded ensemble of per-class regression
// trees: each class score is the base score plus the sum of its trees' leaf
// values, and probabilities are the softmax of the class scores. All fields
// are set at load time and never mutated, so Predict is concurrency-safe.
type GradientBoostedModel struct {
	target       string
	featureNames []string
	classes      []int
	baseScores   []float64
	trees        []tree
}

type tree struct {
	classIndex int
	nodes      []node
}

// node is one decision-tree node. Leaves have left == -1; internal nodes
// route values[feature] <= threshold to left, otherwise to right.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// Target returns the label the artifact was trained against ("risk" or "flare_day").
func (m *GradientBoostedModel) Target() string { return m.target }

// Classes returns the class labels, in probability output order.
func (m *GradientBoostedModel) Classes() []int {
	out := make([]int, len(m.classes))
	copy(out, m.classes)
	return out
}

// NumFeatures returns the expected vector width.
func (m *GradientBoostedModel) NumFeatures() int { return len(m.featureNames) }

// Predict evaluates the ensemble for one feature vector.
func (m *GradientBoostedModel) Predict(values []float64) ([]float64, error) {
	if len(values) != len(m.featureNames) {
		return nil, &FeatureMismatchError{
			Reason: fmt.Sprintf("vector has %d fields, model expects %d", len(values), len(m.featureNames)),
		}
	}

	scores := make([]float64, len(m.classes))
	copy(scores, m.baseScores)
	for _, t := range m.trees {
		scores[t.classIndex] += evaluate(t.nodes, values)
	}
	return softmax(scores), nil
}

func evaluate(nodes []node, values []float64) float64 {
	i := 0
	for {
		n := nodes[i]
		if n.left < 0 {
			return n.value
		}
		if values[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// softmax converts raw class scores to probabilities, shifting by the max
// score for numerical stability.
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
