package predictor

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

const (
	// MinSamples is the history size below which training is skipped
	// entirely (empty result, never an error).
	MinSamples = 100

	// MaxWindow caps the training window at the most recent samples.
	MaxWindow = 1000

	// ConfidenceGate is the minimum confidence for a prediction to
	// produce scaling side effects.
	ConfidenceGate = 0.7

	// GapThreshold is the relative capacity gap a prediction must
	// exceed before anticipatory scaling kicks in.
	GapThreshold = 0.2

	// Provisioned instances default to capacity 50; gap-closing sizes
	// scale_out/scale_in in these units.
	unitCapacity = 50

	// Only the first near-term predictions may act.
	actionablePredictions = 2
)

// CapacityScaler is the slice of the actuator the runner needs.
type CapacityScaler interface {
	ScaleOut(increment, max int) error
	ScaleIn(decrement, min int) error
}

// CapacityReader is the slice of the fleet manager the runner needs.
type CapacityReader interface {
	TotalCapacity() float64
	Size() int
}

// Runner trains the registered forecasting models each cycle and feeds
// high-confidence near-term predictions into the actuator. This is the
// only path by which forecasts produce side effects.
type Runner struct {
	history   *metrics.History
	fleet     CapacityReader
	scaler    CapacityScaler
	publisher *events.Publisher

	registered   map[string]*registration
	mu           sync.Mutex
	minInstances int
	maxInstances int
}

type registration struct {
	model      models.PredictiveScalingModel
	forecaster Forecaster
}

type RunnerConfig struct {
	History      *metrics.History
	Fleet        CapacityReader
	Scaler       CapacityScaler
	Publisher    *events.Publisher
	MinInstances int
	MaxInstances int
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MinInstances <= 0 {
		cfg.MinInstances = 2
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = 20
	}
	return &Runner{
		history:      cfg.History,
		fleet:        cfg.Fleet,
		scaler:       cfg.Scaler,
		publisher:    cfg.Publisher,
		registered:   make(map[string]*registration),
		minInstances: cfg.MinInstances,
		maxInstances: cfg.MaxInstances,
	}
}

// RegisterModel adds a forecasting model to the training rotation.
func (r *Runner) RegisterModel(id, algorithm string, features []string, forecaster Forecaster) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registered[id] = &registration{
		model: models.PredictiveScalingModel{
			ID:        id,
			Algorithm: algorithm,
			Features:  features,
		},
		forecaster: forecaster,
	}
}

// Refresh retrains every registered model and applies anticipatory
// scaling from the first near-term high-confidence predictions.
// Insufficient history is a quiet no-op.
func (r *Runner) Refresh(ctx context.Context) {
	if r.history.Len() < MinSamples {
		logger.Debugf("Predictive refresh skipped: %d samples, need %d", r.history.Len(), MinSamples)
		return
	}

	window := r.history.Recent(MaxWindow)

	r.mu.Lock()
	regs := make([]*registration, 0, len(r.registered))
	for _, reg := range r.registered {
		regs = append(regs, reg)
	}
	r.mu.Unlock()

	for _, reg := range regs {
		predictions := reg.forecaster.Forecast(window)

		r.mu.Lock()
		reg.model.Predictions = predictions
		reg.model.WindowSize = len(window)
		reg.model.LastTrained = time.Now()
		reg.model.Accuracy = windowCoverage(window)
		snapshot := reg.model
		r.mu.Unlock()

		if r.publisher != nil {
			r.publisher.PredictionGenerated(&snapshot)
		}

		r.apply(ctx, predictions)
	}
}

// apply issues at most one anticipatory scaling action per refresh:
// the first prediction clearing both the confidence gate and the 20%
// capacity-gap threshold wins.
func (r *Runner) apply(_ context.Context, predictions []models.ScalingPrediction) {
	if r.scaler == nil || r.fleet == nil {
		return
	}

	current := r.fleet.TotalCapacity()
	if current <= 0 {
		return
	}

	limit := actionablePredictions
	if limit > len(predictions) {
		limit = len(predictions)
	}

	for _, p := range predictions[:limit] {
		if !p.IsHighConfidence(ConfidenceGate) {
			continue
		}

		gap := p.RecommendedCapacity - current
		if math.Abs(gap) <= GapThreshold*current {
			continue
		}

		instances := int(math.Ceil(math.Abs(gap) / unitCapacity))
		if instances < 1 {
			instances = 1
		}

		var err error
		if gap > 0 {
			logger.Infof(
				"Anticipatory scale out: capacity %.0f -> %.0f recommended (confidence %.2f)",
				current, p.RecommendedCapacity, p.Confidence)
			err = r.scaler.ScaleOut(instances, r.maxInstances)
		} else {
			logger.Infof(
				"Anticipatory scale in: capacity %.0f -> %.0f recommended (confidence %.2f)",
				current, p.RecommendedCapacity, p.Confidence)
			err = r.scaler.ScaleIn(instances, r.minInstances)
		}
		if err != nil {
			logger.Warnf("Anticipatory scaling rejected: %v", err)
		}
		return
	}
}

// Models returns copies of the registered models with their latest
// predictions.
func (r *Runner) Models() []models.PredictiveScalingModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.PredictiveScalingModel, 0, len(r.registered))
	for _, reg := range r.registered {
		out = append(out, reg.model)
	}
	return out
}

// Predictions returns up to n near-term predictions from the freshest
// model, for the status snapshot.
func (r *Runner) Predictions(n int) []models.ScalingPrediction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newest *registration
	for _, reg := range r.registered {
		if newest == nil || reg.model.LastTrained.After(newest.model.LastTrained) {
			newest = reg
		}
	}
	if newest == nil || len(newest.model.Predictions) == 0 {
		return nil
	}

	if n > len(newest.model.Predictions) {
		n = len(newest.model.Predictions)
	}
	out := make([]models.ScalingPrediction, n)
	copy(out, newest.model.Predictions[:n])
	return out
}

// windowCoverage is a crude accuracy proxy: the fraction of hourly
// buckets the window actually covers.
func windowCoverage(window []models.HistoricalMetric) float64 {
	var seen [24]bool
	for _, entry := range window {
		seen[entry.Metrics.Timestamp.Hour()] = true
	}
	covered := 0
	for _, ok := range seen {
		if ok {
			covered++
		}
	}
	return float64(covered) / 24
}
