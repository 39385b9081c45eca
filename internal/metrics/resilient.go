package metrics

import (
	"context"
	"sync"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/resilience"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// ResilientSource wraps a Source with a circuit breaker and falls back
// to the last good sample while the underlying backend is unavailable.
type ResilientSource struct {
	inner    Source
	breaker  *resilience.CircuitBreaker
	lastGood *models.ScalingMetrics
	mu       sync.Mutex
}

func NewResilientSource(inner Source, breaker *resilience.CircuitBreaker) *ResilientSource {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "metrics-source",
		})
	}
	return &ResilientSource{inner: inner, breaker: breaker}
}

func (r *ResilientSource) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	var sample models.ScalingMetrics

	err := r.breaker.Execute(func() error {
		var sampleErr error
		sample, sampleErr = r.inner.Sample(ctx)
		return sampleErr
	})

	if err == nil {
		r.mu.Lock()
		copied := sample
		r.lastGood = &copied
		r.mu.Unlock()
		return sample, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastGood != nil {
		logger.Warnf("Metrics source failed, serving last good sample: %v", err)
		return *r.lastGood, nil
	}
	return sample, err
}
