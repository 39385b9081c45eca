package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

var (
	ErrNoData            = errors.New("no metrics in window")
	ErrProbeFailed       = errors.New("metric probe failed")
	ErrSourceUnavailable = errors.New("metrics source unavailable")
)

// Probe collects one metric field from its backing instrumentation.
// Probes are independently replaceable so tests and alternative APM
// backends can supply their own.
type Probe interface {
	Collect(ctx context.Context) (float64, error)
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) (float64, error)

func (f ProbeFunc) Collect(ctx context.Context) (float64, error) {
	return f(ctx)
}

// Source produces complete metrics snapshots.
type Source interface {
	Sample(ctx context.Context) (models.ScalingMetrics, error)
}

// ProbeSet composes the eight per-field probes into a Source. Every
// probe must be set; a nil probe is a configuration error surfaced at
// sample time.
type ProbeSet struct {
	CPU         Probe
	Memory      Probe
	Network     Probe
	RPS         Probe
	Latency     Probe
	ErrorRate   Probe
	Connections Probe
	QueueDepth  Probe
}

func (ps *ProbeSet) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	var m models.ScalingMetrics

	fields := []struct {
		name  string
		probe Probe
		dest  *float64
	}{
		{models.MetricCPU, ps.CPU, &m.CPUUtilization},
		{models.MetricMemory, ps.Memory, &m.MemoryUtilization},
		{models.MetricNetwork, ps.Network, &m.NetworkThroughput},
		{models.MetricRPS, ps.RPS, &m.RequestsPerSecond},
		{models.MetricResponse, ps.Latency, &m.ResponseTime},
		{models.MetricErrorRate, ps.ErrorRate, &m.ErrorRate},
	}

	for _, f := range fields {
		if f.probe == nil {
			return m, fmt.Errorf("%w: no probe for %s", ErrProbeFailed, f.name)
		}
		value, err := f.probe.Collect(ctx)
		if err != nil {
			return m, fmt.Errorf("%w: %s: %v", ErrProbeFailed, f.name, err)
		}
		if value < 0 {
			value = 0
		}
		*f.dest = value
	}

	conns, err := collectCount(ctx, ps.Connections, models.MetricConnections)
	if err != nil {
		return m, err
	}
	m.ActiveConnections = conns

	queue, err := collectCount(ctx, ps.QueueDepth, models.MetricQueueLength)
	if err != nil {
		return m, err
	}
	m.QueueLength = queue

	m.Timestamp = time.Now()
	return m, nil
}

func collectCount(ctx context.Context, probe Probe, name string) (int, error) {
	if probe == nil {
		return 0, fmt.Errorf("%w: no probe for %s", ErrProbeFailed, name)
	}
	value, err := probe.Collect(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, name, err)
	}
	if value < 0 {
		value = 0
	}
	return int(value), nil
}
