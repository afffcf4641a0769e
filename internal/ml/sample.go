package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sahith215/AtmosTrack/internal/models"
)

// WriteSampleModel writes a small deterministic model artifact for
// demonstration. Call this when no trained artifact is mounted.
func WriteSampleModel(path string) error {
	forest := sampleForest()

	data, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// WriteSampleFeatures writes the companion feature-name list matching the
// sample artifact.
func WriteSampleFeatures(path string) error {
	data, err := json.MarshalIndent(models.FeatureNames, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feature names: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write feature names file: %w", err)
	}
	return nil
}

// sampleForest builds a two-tree forest with hand-picked splits: high CO2
// with low vibration leans Industry/Vehicle, strong vibration leans
// Construction, low readings lean Clean.
func sampleForest() Forest {
	tree1 := Tree{Nodes: []TreeNode{
		{FeatureIdx: 2, Threshold: 450, Left: 1, Right: 4}, // CO2_avg
		{FeatureIdx: 4, Threshold: 0.5, Left: 2, Right: 3}, // Vibration_amp
		{IsLeaf: true, Probs: []float64{0.05, 0.05, 0.10, 0.80}},
		{IsLeaf: true, Probs: []float64{0.10, 0.10, 0.70, 0.10}},
		{FeatureIdx: 0, Threshold: 2.0, Left: 5, Right: 6}, // VOC_avg
		{IsLeaf: true, Probs: []float64{0.20, 0.65, 0.10, 0.05}},
		{IsLeaf: true, Probs: []float64{0.70, 0.15, 0.10, 0.05}},
	}}

	tree2 := Tree{Nodes: []TreeNode{
		{FeatureIdx: 5, Threshold: 20, Left: 1, Right: 4}, // Vibration_freq
		{FeatureIdx: 2, Threshold: 500, Left: 2, Right: 3},
		{IsLeaf: true, Probs: []float64{0.10, 0.10, 0.05, 0.75}},
		{IsLeaf: true, Probs: []float64{0.55, 0.25, 0.10, 0.10}},
		{FeatureIdx: 0, Threshold: 3.0, Left: 5, Right: 6},
		{IsLeaf: true, Probs: []float64{0.15, 0.15, 0.60, 0.10}},
		{IsLeaf: true, Probs: []float64{0.15, 0.60, 0.20, 0.05}},
	}}

	return Forest{
		Metadata: Metadata{
			ModelVersion: "sample-0.1",
			FeatureNames: models.FeatureNames,
			Classes:      models.SourceLabels,
			NFeatures:    models.FeatureCount,
		},
		Trees: []Tree{tree1, tree2},
	}
}
