package predictor

import (
	"fmt"
	"math"
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Forecaster regenerates a model's predictions from a training window.
// Implementations cover the next 24 hourly buckets; confidence should
// not increase with horizon distance.
type Forecaster interface {
	Forecast(window []models.HistoricalMetric) []models.ScalingPrediction
}

const (
	forecastHorizonHours = 24
	baseConfidence       = 0.92
	confidenceDecay      = 0.015
	minConfidence        = 0.3
)

// SeasonalForecaster predicts load from hour-of-day averages over the
// training window, since the daily traffic cycle dominates the workload.
// Buckets with no samples fall back to the window mean at reduced
// confidence.
type SeasonalForecaster struct {
	// TargetUtilization is the CPU level capacity should be sized for.
	TargetUtilization float64

	// CurrentCapacity reports total fleet capacity so recommendations
	// are expressed in the same units the runner compares against.
	CurrentCapacity func() float64
}

func NewSeasonalForecaster(targetUtilization float64, currentCapacity func() float64) *SeasonalForecaster {
	if targetUtilization <= 0 {
		targetUtilization = 70
	}
	return &SeasonalForecaster{
		TargetUtilization: targetUtilization,
		CurrentCapacity:   currentCapacity,
	}
}

func (f *SeasonalForecaster) Forecast(window []models.HistoricalMetric) []models.ScalingPrediction {
	if len(window) == 0 {
		return nil
	}

	var hourSum [24]float64
	var hourCount [24]int
	var total float64
	for _, entry := range window {
		hour := entry.Metrics.Timestamp.Hour()
		hourSum[hour] += entry.Metrics.CPUUtilization
		hourCount[hour]++
		total += entry.Metrics.CPUUtilization
	}
	mean := total / float64(len(window))

	capacity := 0.0
	if f.CurrentCapacity != nil {
		capacity = f.CurrentCapacity()
	}

	now := time.Now().Truncate(time.Hour)
	predictions := make([]models.ScalingPrediction, 0, forecastHorizonHours)

	for i := 1; i <= forecastHorizonHours; i++ {
		bucket := now.Add(time.Duration(i) * time.Hour)
		hour := bucket.Hour()

		predicted := mean
		confidence := baseConfidence - confidenceDecay*float64(i)
		reasoning := []string{fmt.Sprintf("hour-of-day seasonal average over %d samples", len(window))}

		if hourCount[hour] > 0 {
			predicted = hourSum[hour] / float64(hourCount[hour])
		} else {
			confidence *= 0.5
			reasoning = append(reasoning, "no samples for this hour, using window mean")
		}
		if confidence < minConfidence {
			confidence = minConfidence
		}

		recommended := capacity
		if f.TargetUtilization > 0 && capacity > 0 {
			recommended = math.Round(capacity * predicted / f.TargetUtilization)
		}

		predictions = append(predictions, models.ScalingPrediction{
			Timestamp:           bucket,
			PredictedLoad:       predicted,
			Confidence:          confidence,
			RecommendedCapacity: recommended,
			Reasoning:           reasoning,
		})
	}

	return predictions
}
