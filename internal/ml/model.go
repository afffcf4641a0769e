package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sahith215/AtmosTrack/internal/models"
)

// ErrInference marks failures of the loaded model to produce a probability
// distribution for a request vector. Callers surface these as server errors;
// the process keeps serving.
var ErrInference = errors.New("inference error")

// Metadata describes the trained artifact. It is validated against the
// service's canonical feature order and class list at load time so that a
// mismatched artifact fails at startup instead of at the first request.
type Metadata struct {
	ModelVersion string   `json:"model_version"`
	FeatureNames []string `json:"feature_names"`
	Classes      []string `json:"classes"`
	NFeatures    int      `json:"n_features"`
}

// TreeNode is one node of a decision tree, stored in a flat array. Internal
// nodes route on FeatureIdx/Threshold; leaves carry a normalized probability
// distribution over the classes.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	Left       int       `json:"left"`
	Right      int       `json:"right"`
	IsLeaf     bool      `json:"is_leaf"`
	Probs      []float64 `json:"probs,omitempty"`
}

// Tree is a single decision tree of the ensemble.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Forest is the loaded model artifact: metadata plus a random-forest style
// ensemble. It is read-only after Load, so concurrent prediction needs no
// locking.
type Forest struct {
	Metadata Metadata `json:"metadata"`
	Trees    []Tree   `json:"trees"`
}

// Load reads the model artifact from disk and validates its metadata against
// the canonical feature order and class list.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	if err := forest.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}

	return &forest, nil
}

func (f *Forest) validate() error {
	meta := f.Metadata

	if meta.NFeatures != models.FeatureCount {
		return fmt.Errorf("artifact expects %d features, service assembles %d",
			meta.NFeatures, models.FeatureCount)
	}
	if len(meta.FeatureNames) != len(models.FeatureNames) {
		return fmt.Errorf("artifact lists %d feature names, expected %d",
			len(meta.FeatureNames), len(models.FeatureNames))
	}
	for i, name := range models.FeatureNames {
		if meta.FeatureNames[i] != name {
			return fmt.Errorf("feature %d is %q in artifact, expected %q",
				i, meta.FeatureNames[i], name)
		}
	}
	if len(meta.Classes) != len(models.SourceLabels) {
		return fmt.Errorf("artifact lists %d classes, expected %d",
			len(meta.Classes), len(models.SourceLabels))
	}
	for i, label := range models.SourceLabels {
		if meta.Classes[i] != label {
			return fmt.Errorf("class %d is %q in artifact, expected %q",
				i, meta.Classes[i], label)
		}
	}
	if len(f.Trees) == 0 {
		return errors.New("artifact contains no trees")
	}
	for i, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", i)
		}
	}
	return nil
}

// PredictProba walks every tree with the given vector and averages the leaf
// distributions. The result is one probability per class, summing to ~1.0.
func (f *Forest) PredictProba(vector []float64) ([]float64, error) {
	if len(vector) != f.Metadata.NFeatures {
		return nil, fmt.Errorf("%w: vector has %d features, model expects %d",
			ErrInference, len(vector), f.Metadata.NFeatures)
	}

	nClasses := len(f.Metadata.Classes)
	probs := make([]float64, nClasses)

	for i := range f.Trees {
		leaf, err := f.Trees[i].walk(vector)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInference, i, err)
		}
		if len(leaf) != nClasses {
			return nil, fmt.Errorf("%w: tree %d leaf has %d probabilities, expected %d",
				ErrInference, i, len(leaf), nClasses)
		}
		for c, p := range leaf {
			probs[c] += p
		}
	}

	n := float64(len(f.Trees))
	for c := range probs {
		probs[c] /= n
	}
	return probs, nil
}

func (t *Tree) walk(vector []float64) ([]float64, error) {
	idx := 0
	// Bounded by node count so a malformed artifact with a cycle cannot spin.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Probs, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(vector) {
			return nil, fmt.Errorf("node %d feature index %d out of range", idx, node.FeatureIdx)
		}
		if vector[node.FeatureIdx] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return nil, fmt.Errorf("child index %d out of range", idx)
		}
	}
	return nil, errors.New("no leaf reached")
}

// LoadFeatureNames reads the companion feature-name list written by the
// training pipeline alongside the model artifact.
func LoadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature names file: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature names: %w", err)
	}
	return names, nil
}

// CheckFeatureNames cross-checks the companion list against the artifact
// metadata. Any disagreement means the artifact and list come from different
// training runs, so the service must not start.
func (f *Forest) CheckFeatureNames(names []string) error {
	if len(names) != len(f.Metadata.FeatureNames) {
		return fmt.Errorf("feature names file lists %d features, artifact lists %d",
			len(names), len(f.Metadata.FeatureNames))
	}
	for i, name := range names {
		if name != f.Metadata.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q in names file, %q in artifact",
				i, name, f.Metadata.FeatureNames[i])
		}
	}
	return nil
}
