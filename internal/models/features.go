package models

// FeatureNames is the canonical ordered feature list the model was trained
// with. The position of each name is part of the contract with the training
// pipeline: the vector handed to the model must follow exactly this order.
var FeatureNames = []string{
	"VOC_avg",
	"VOC_std",
	"CO2_avg",
	"CO2_std",
	"Vibration_amp",
	"Vibration_freq",
	"Hour",
}

// FeatureCount is the fixed width of the model input vector.
const FeatureCount = 7

// FeatureRecord is the request body of POST /classify. All fields are
// required; numeric fields are pointers so a present zero value is
// distinguishable from a missing field. Hour is expected to be 0-23 but
// the range is not enforced.
type FeatureRecord struct {
	VOCAvg        *float64 `json:"VOC_avg" binding:"required"`
	VOCStd        *float64 `json:"VOC_std" binding:"required"`
	CO2Avg        *float64 `json:"CO2_avg" binding:"required"`
	CO2Std        *float64 `json:"CO2_std" binding:"required"`
	VibrationAmp  *float64 `json:"Vibration_amp" binding:"required"`
	VibrationFreq *float64 `json:"Vibration_freq" binding:"required"`
	Hour          *int     `json:"Hour" binding:"required"`
}

// Vector assembles the ordered input vector in the fixed training order.
// This is the only place in the codebase that encodes the field order.
func (r *FeatureRecord) Vector() []float64 {
	return []float64{
		*r.VOCAvg,
		*r.VOCStd,
		*r.CO2Avg,
		*r.CO2Std,
		*r.VibrationAmp,
		*r.VibrationFreq,
		float64(*r.Hour),
	}
}
