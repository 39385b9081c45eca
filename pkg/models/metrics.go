package models

import "time"

// ScalingMetrics is a point-in-time snapshot of the signals the control
// loop scales on. A snapshot is immutable once captured; all numeric
// fields are non-negative.
type ScalingMetrics struct {
	CPUUtilization    float64   `json:"cpu_utilization"`
	MemoryUtilization float64   `json:"memory_utilization"`
	NetworkThroughput float64   `json:"network_throughput"`
	RequestsPerSecond float64   `json:"requests_per_second"`
	ResponseTime      float64   `json:"response_time_ms"`
	ErrorRate         float64   `json:"error_rate"`
	ActiveConnections int       `json:"active_connections"`
	QueueLength       int       `json:"queue_length"`
	Timestamp         time.Time `json:"timestamp"`
}

// Metric field names used by scaling triggers.
const (
	MetricCPU         = "cpu_utilization"
	MetricMemory      = "memory_utilization"
	MetricNetwork     = "network_throughput"
	MetricRPS         = "requests_per_second"
	MetricResponse    = "response_time_ms"
	MetricErrorRate   = "error_rate"
	MetricConnections = "active_connections"
	MetricQueueLength = "queue_length"
)

// KnownMetric reports whether name is a trigger-addressable metric field.
func KnownMetric(name string) bool {
	switch name {
	case MetricCPU, MetricMemory, MetricNetwork, MetricRPS,
		MetricResponse, MetricErrorRate, MetricConnections, MetricQueueLength:
		return true
	}
	return false
}

// Field returns the named metric value, with ok=false for unknown names.
func (m *ScalingMetrics) Field(name string) (float64, bool) {
	switch name {
	case MetricCPU:
		return m.CPUUtilization, true
	case MetricMemory:
		return m.MemoryUtilization, true
	case MetricNetwork:
		return m.NetworkThroughput, true
	case MetricRPS:
		return m.RequestsPerSecond, true
	case MetricResponse:
		return m.ResponseTime, true
	case MetricErrorRate:
		return m.ErrorRate, true
	case MetricConnections:
		return float64(m.ActiveConnections), true
	case MetricQueueLength:
		return float64(m.QueueLength), true
	}
	return 0, false
}

// HistoricalMetric is one retained history entry: a metrics snapshot plus
// optional business context labels attached at capture time.
type HistoricalMetric struct {
	Metrics ScalingMetrics    `json:"metrics"`
	Context map[string]string `json:"context,omitempty"`
}
