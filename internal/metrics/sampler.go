package metrics

import (
	"context"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Sampler drives one snapshot per scheduler tick: sample the source,
// enforce monotonically non-decreasing timestamps, append to history.
type Sampler struct {
	source    Source
	history   *History
	publisher *events.Publisher
	lastStamp time.Time
	context   map[string]string
}

type SamplerConfig struct {
	Source    Source
	Retention time.Duration
	Publisher *events.Publisher
	// Context labels attached to every history entry (deployment,
	// environment, business calendar tags).
	Context map[string]string
}

func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{
		source:    cfg.Source,
		history:   NewHistory(cfg.Retention),
		publisher: cfg.Publisher,
		context:   cfg.Context,
	}
}

func (s *Sampler) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	sample, err := s.source.Sample(ctx)
	if err != nil {
		return sample, err
	}

	if sample.Timestamp.Before(s.lastStamp) {
		sample.Timestamp = s.lastStamp
	}
	s.lastStamp = sample.Timestamp

	s.history.Append(models.HistoricalMetric{
		Metrics: sample,
		Context: s.context,
	})

	if s.publisher != nil {
		s.publisher.MetricsSampled(&sample)
	}
	return sample, nil
}

func (s *Sampler) History() *History {
	return s.history
}

// AverageMetrics returns the field-wise mean over the trailing window,
// or ErrNoData for an empty window.
func (s *Sampler) AverageMetrics(window time.Duration) (models.ScalingMetrics, error) {
	return s.history.Average(window)
}
