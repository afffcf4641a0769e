package service

import (
	"fmt"
	"math"

	"github.com/sahith215/AtmosTrack/internal/ml"
	"github.com/sahith215/AtmosTrack/internal/models"
)

// Model is the read-only inference handle the classifier needs. *ml.Forest
// satisfies it; tests inject fakes.
type Model interface {
	PredictProba(vector []float64) ([]float64, error)
}

// Classifier maps a feature record to a pollution source label. It is
// stateless per request: the model handle is read-only after construction,
// so concurrent Classify calls need no locking.
type Classifier struct {
	model    Model
	accuracy float64
}

// NewClassifier builds a classifier around a loaded model. accuracy is the
// static figure from offline evaluation reported with every response; it is
// never derived from the model or from live traffic.
func NewClassifier(model Model, accuracy float64) *Classifier {
	return &Classifier{
		model:    model,
		accuracy: accuracy,
	}
}

// Classify assembles the ordered vector, runs the model and shapes the
// response: argmax over the class probabilities (ties go to the lower
// index), clamped to [0,1], scaled to a percentage and rounded to 1 decimal.
func (c *Classifier) Classify(record *models.FeatureRecord) (*models.Classification, error) {
	probs, err := c.model.PredictProba(record.Vector())
	if err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}
	if len(probs) != len(models.SourceLabels) {
		return nil, fmt.Errorf("%w: model returned %d probabilities, expected %d",
			ml.ErrInference, len(probs), len(models.SourceLabels))
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	p := probs[best]
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	confidence := math.Round(p*1000) / 10

	return &models.Classification{
		Label:         models.SourceLabels[best],
		Confidence:    confidence,
		ModelAccuracy: c.accuracy,
	}, nil
}
