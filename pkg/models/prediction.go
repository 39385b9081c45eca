package models

import "time"

// ScalingPrediction is one advisory forecast bucket. Only predictions
// with high confidence are allowed to produce scaling side effects.
type ScalingPrediction struct {
	Timestamp           time.Time `json:"timestamp"`
	PredictedLoad       float64   `json:"predicted_load"`
	Confidence          float64   `json:"confidence"`
	RecommendedCapacity float64   `json:"recommended_capacity"`
	Reasoning           []string  `json:"reasoning,omitempty"`
}

// IsHighConfidence reports whether the prediction clears the given
// confidence threshold.
func (p *ScalingPrediction) IsHighConfidence(threshold float64) bool {
	return p.Confidence >= threshold
}

// PredictiveScalingModel holds one registered forecasting model and its
// latest generation of predictions. Predictions are regenerated wholesale
// on every training cycle.
type PredictiveScalingModel struct {
	ID          string              `json:"id"`
	Algorithm   string              `json:"algorithm"`
	Features    []string            `json:"features"`
	WindowSize  int                 `json:"window_size"`
	Accuracy    float64             `json:"accuracy"`
	LastTrained time.Time           `json:"last_trained"`
	Predictions []ScalingPrediction `json:"predictions,omitempty"`
}
