package models

// SourceLabels is the fixed ordered list of pollution source classes. Index i
// of the model's probability output corresponds to SourceLabels[i].
var SourceLabels = []string{
	"Vehicle",
	"Industry",
	"Construction",
	"Clean",
}

// Classification is the response body of POST /classify.
type Classification struct {
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	ModelAccuracy float64 `json:"modelAccuracy"`
}
