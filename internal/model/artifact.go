package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/feature"
)

// SchemaVersion is the artifact format this loader understands. The artifact
// carries its own schema_version so that older bundles (the legacy joblib
// lineage had several divergent ones) fail loudly instead of being guessed at.
const SchemaVersion = 1

// artifact is the on-disk JSON form of a trained model.
type artifact struct {
	SchemaVersion int            `json:"schema_version"`
	LayoutVersion int            `json:"layout_version"`
	Target        string         `json:"target"`
	FeatureNames  []string       `json:"feature_names"`
	Classes       []int          `json:"classes"`
	BaseScores    []float64      `json:"base_scores"`
	Trees         []artifactTree `json:"trees"`
}

type artifactTree struct {
	ClassIndex int            `json:"class_index"`
	Nodes      []artifactNode `json:"nodes"`
}

type artifactNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Load reads and validates a model artifact. A missing or unreadable file is
// ErrModelNotFound; an artifact whose feature layout disagrees with the
// current builder layout is a *FeatureMismatchError. Both abort the run.
func Load(path string) (*GradientBoostedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrModelNotFound, path, err)
	}

	if a.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported artifact schema_version %d (want %d)", a.SchemaVersion, SchemaVersion)
	}
	if !domain.ValidTarget(a.Target) {
		return nil, fmt.Errorf("artifact has unknown target %q", a.Target)
	}
	if err := checkLayout(a); err != nil {
		return nil, err
	}
	if len(a.Classes) < 2 {
		return nil, fmt.Errorf("artifact has %d classes, want at least 2", len(a.Classes))
	}
	if len(a.BaseScores) != len(a.Classes) {
		return nil, fmt.Errorf("artifact has %d base scores for %d classes", len(a.BaseScores), len(a.Classes))
	}

	m := &GradientBoostedModel{
		target:       a.Target,
		featureNames: a.FeatureNames,
		classes:      a.Classes,
		baseScores:   a.BaseScores,
		trees:        make([]tree, 0, len(a.Trees)),
	}
	for i, t := range a.Trees {
		if t.ClassIndex < 0 || t.ClassIndex >= len(a.Classes) {
			return nil, fmt.Errorf("tree %d targets class index %d, want 0-%d", i, t.ClassIndex, len(a.Classes)-1)
		}
		nodes, err := convertNodes(i, t.Nodes, len(a.FeatureNames))
		if err != nil {
			return nil, err
		}
		m.trees = append(m.trees, tree{classIndex: t.ClassIndex, nodes: nodes})
	}
	return m, nil
}

// checkLayout verifies the artifact was trained against the builder's current
// field layout: same version, same width, same names in the same order.
func checkLayout(a artifact) error {
	if a.LayoutVersion != feature.LayoutVersion {
		return &FeatureMismatchError{
			Reason: fmt.Sprintf("artifact layout_version %d, builder has %d", a.LayoutVersion, feature.LayoutVersion),
		}
	}
	layout := feature.Layout()
	if len(a.FeatureNames) != len(layout) {
		return &FeatureMismatchError{
			Reason: fmt.Sprintf("artifact has %d features, builder produces %d", len(a.FeatureNames), len(layout)),
		}
	}
	for i, name := range layout {
		if a.FeatureNames[i] != name {
			return &FeatureMismatchError{
				Reason: fmt.Sprintf("feature %d is %q in artifact, %q in builder", i, a.FeatureNames[i], name),
			}
		}
	}
	return nil
}

func convertNodes(treeIndex int, in []artifactNode, numFeatures int) ([]node, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("tree %d has no nodes", treeIndex)
	}
	out := make([]node, len(in))
	for i, n := range in {
		if n.Left >= 0 {
			if n.Feature < 0 || n.Feature >= numFeatures {
				return nil, fmt.Errorf("tree %d node %d splits on feature %d, want 0-%d", treeIndex, i, n.Feature, numFeatures-1)
			}
			if n.Left >= len(in) || n.Right < 0 || n.Right >= len(in) {
				return nil, fmt.Errorf("tree %d node %d has child out of range", treeIndex, i)
			}
		}
		out[i] = node{
			feature:   n.Feature,
			threshold: n.Threshold,
			left:      n.Left,
			right:     n.Right,
			value:     n.Value,
		}
	}
	return out, nil
}
