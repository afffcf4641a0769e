package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sahith215/AtmosTrack/internal/models"
)

func writeArtifact(t *testing.T, forest Forest) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	data, err := json.Marshal(forest)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadSampleModel(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	featuresPath := filepath.Join(dir, "features.json")

	if err := WriteSampleModel(modelPath); err != nil {
		t.Fatalf("WriteSampleModel: %v", err)
	}
	if err := WriteSampleFeatures(featuresPath); err != nil {
		t.Fatalf("WriteSampleFeatures: %v", err)
	}

	forest, err := Load(modelPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	names, err := LoadFeatureNames(featuresPath)
	if err != nil {
		t.Fatalf("LoadFeatureNames: %v", err)
	}
	if err := forest.CheckFeatureNames(names); err != nil {
		t.Fatalf("CheckFeatureNames: %v", err)
	}

	probs, err := forest.PredictProba([]float64{1.2, 0.3, 410, 5, 0.01, 12, 14})
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	if len(probs) != len(models.SourceLabels) {
		t.Fatalf("expected %d probabilities, got %d", len(models.SourceLabels), len(probs))
	}

	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			t.Errorf("probability %d is negative: %v", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("probabilities sum to %v, expected ~1.0", sum)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestLoadRejectsMetadataMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Forest)
	}{
		{"wrong feature count", func(f *Forest) { f.Metadata.NFeatures = 5 }},
		{"reordered features", func(f *Forest) {
			f.Metadata.FeatureNames = append([]string{}, f.Metadata.FeatureNames...)
			f.Metadata.FeatureNames[0], f.Metadata.FeatureNames[1] = f.Metadata.FeatureNames[1], f.Metadata.FeatureNames[0]
		}},
		{"unknown class", func(f *Forest) {
			f.Metadata.Classes = []string{"Vehicle", "Industry", "Construction", "Unknown"}
		}},
		{"missing class", func(f *Forest) {
			f.Metadata.Classes = f.Metadata.Classes[:3]
		}},
		{"no trees", func(f *Forest) { f.Trees = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sampleForest()
			tt.mutate(&forest)
			path := writeArtifact(t, forest)
			if _, err := Load(path); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}

func TestPredictProbaVectorWidthMismatch(t *testing.T) {
	forest := sampleForest()
	_, err := forest.PredictProba([]float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for short vector")
	}
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}

func TestPredictProbaMalformedTree(t *testing.T) {
	vector := []float64{1.2, 0.3, 410, 5, 0.01, 12, 14}

	tests := []struct {
		name   string
		mutate func(*Forest)
	}{
		{"child index out of range", func(f *Forest) { f.Trees[0].Nodes[0].Left = 99 }},
		{"feature index out of range", func(f *Forest) { f.Trees[0].Nodes[0].FeatureIdx = 12 }},
		{"wrong leaf length", func(f *Forest) { f.Trees[0].Nodes[2].Probs = []float64{1.0} }},
		{"cycle", func(f *Forest) {
			f.Trees[0].Nodes[0].Left = 0
			f.Trees[0].Nodes[0].Right = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sampleForest()
			tt.mutate(&forest)
			_, err := forest.PredictProba(vector)
			if err == nil {
				t.Fatal("expected inference error")
			}
			if !errors.Is(err, ErrInference) {
				t.Fatalf("expected ErrInference, got %v", err)
			}
		})
	}
}

func TestPredictProbaDeterministic(t *testing.T) {
	forest := sampleForest()
	vector := []float64{3.5, 0.8, 620, 12, 0.2, 35, 9}

	first, err := forest.PredictProba(vector)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := forest.PredictProba(vector)
		if err != nil {
			t.Fatal(err)
		}
		for c := range first {
			if again[c] != first[c] {
				t.Fatalf("run %d: probability %d changed from %v to %v", i, c, first[c], again[c])
			}
		}
	}
}

func TestCheckFeatureNamesMismatch(t *testing.T) {
	forest := sampleForest()

	if err := forest.CheckFeatureNames([]string{"VOC_avg"}); err == nil {
		t.Error("expected error for short list")
	}

	names := append([]string{}, models.FeatureNames...)
	names[6] = "Minute"
	if err := forest.CheckFeatureNames(names); err == nil {
		t.Error("expected error for renamed feature")
	}
}
