package metrics

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// SimulatedSource generates plausible load signals around configurable
// baselines. It stands in for a real APM integration in development and
// tests; production deployments implement Source against their backend.
type SimulatedSource struct {
	baseCPU     float64
	baseMemory  float64
	baseRPS     float64
	baseLatency float64
	variance    float64

	shouldFail   bool
	failureError error
	mu           sync.Mutex
}

type SimulatedSourceConfig struct {
	BaseCPU     float64
	BaseMemory  float64
	BaseRPS     float64
	BaseLatency float64
	Variance    float64
}

func NewSimulatedSource(cfg SimulatedSourceConfig) *SimulatedSource {
	if cfg.BaseCPU == 0 {
		cfg.BaseCPU = 50.0
	}
	if cfg.BaseMemory == 0 {
		cfg.BaseMemory = 60.0
	}
	if cfg.BaseRPS == 0 {
		cfg.BaseRPS = 250.0
	}
	if cfg.BaseLatency == 0 {
		cfg.BaseLatency = 180.0
	}
	if cfg.Variance == 0 {
		cfg.Variance = 10.0
	}

	return &SimulatedSource{
		baseCPU:     cfg.BaseCPU,
		baseMemory:  cfg.BaseMemory,
		baseRPS:     cfg.BaseRPS,
		baseLatency: cfg.BaseLatency,
		variance:    cfg.Variance,
	}
}

func (s *SimulatedSource) SetBaseCPU(cpu float64) {
	s.mu.Lock()
	s.baseCPU = cpu
	s.mu.Unlock()
}

func (s *SimulatedSource) SetBaseLatency(latency float64) {
	s.mu.Lock()
	s.baseLatency = latency
	s.mu.Unlock()
}

func (s *SimulatedSource) SetShouldFail(shouldFail bool, err error) {
	s.mu.Lock()
	s.shouldFail = shouldFail
	s.failureError = err
	s.mu.Unlock()
}

func (s *SimulatedSource) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail {
		if s.failureError != nil {
			return models.ScalingMetrics{}, s.failureError
		}
		return models.ScalingMetrics{}, ErrSourceUnavailable
	}

	return models.ScalingMetrics{
		CPUUtilization:    s.jitterPercent(s.baseCPU),
		MemoryUtilization: s.jitterPercent(s.baseMemory),
		NetworkThroughput: s.jitter(s.baseRPS*0.4, s.variance),
		RequestsPerSecond: s.jitter(s.baseRPS, s.variance*5),
		ResponseTime:      s.jitter(s.baseLatency, s.variance*3),
		ErrorRate:         s.jitter(0.5, 0.5),
		ActiveConnections: int(s.jitter(s.baseRPS*2, s.variance*10)),
		QueueLength:       int(s.jitter(5, 5)),
		Timestamp:         time.Now(),
	}, nil
}

// CacheHitRatio and CompressionRatio back the optimizer's ratio
// providers in simulated deployments.
func (s *SimulatedSource) CacheHitRatio(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jitterRatio(0.72), nil
}

func (s *SimulatedSource) CompressionRatio(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jitterRatio(0.50), nil
}

func (s *SimulatedSource) jitterRatio(base float64) float64 {
	value := s.jitter(base, 0.08)
	if value > 1 {
		value = 1
	}
	return value
}

func (s *SimulatedSource) jitter(base, variance float64) float64 {
	value := base + (rand.Float64()*2-1)*variance
	if value < 0 {
		value = 0
	}
	return value
}

func (s *SimulatedSource) jitterPercent(base float64) float64 {
	value := s.jitter(base, s.variance)
	if value > 100 {
		value = 100
	}
	return value
}
