package models

import "time"

type RecommendationCategory string

const (
	RecommendationRightSize   RecommendationCategory = "right_size"
	RecommendationCaching     RecommendationCategory = "caching"
	RecommendationCompression RecommendationCategory = "compression"
)

// Recommendation is an advisory optimizer finding. The optimizer never
// acts on its own output.
type Recommendation struct {
	Category         RecommendationCategory `json:"category"`
	Target           string                 `json:"target,omitempty"`
	Impact           string                 `json:"impact"`
	EstimatedSavings float64                `json:"estimated_savings_pct"`
	Risk             string                 `json:"risk"`
	Rank             int                    `json:"rank"`
	GeneratedAt      time.Time              `json:"generated_at"`
}
