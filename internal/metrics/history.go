package metrics

import (
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// History is the sampler-owned, retention-bounded metric series.
// Entries older than the horizon are purged eagerly on every append,
// anchored to the newest sample's timestamp.
type History struct {
	entries   []models.HistoricalMetric
	retention time.Duration
	mu        sync.RWMutex
}

const DefaultRetention = 24 * time.Hour

func NewHistory(retention time.Duration) *History {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &History{retention: retention}
}

func (h *History) Append(entry models.HistoricalMetric) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)

	cutoff := entry.Metrics.Timestamp.Add(-h.retention)
	firstKept := 0
	for firstKept < len(h.entries) && h.entries[firstKept].Metrics.Timestamp.Before(cutoff) {
		firstKept++
	}
	if firstKept > 0 {
		h.entries = append([]models.HistoricalMetric(nil), h.entries[firstKept:]...)
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Latest returns the most recent entry, or false for an empty history.
func (h *History) Latest() (models.HistoricalMetric, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return models.HistoricalMetric{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Recent returns copies of the most recent n entries, oldest first.
func (h *History) Recent(n int) []models.HistoricalMetric {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || len(h.entries) == 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]models.HistoricalMetric, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Snapshot returns a copy of the full retained series, oldest first.
func (h *History) Snapshot() []models.HistoricalMetric {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.HistoricalMetric, len(h.entries))
	copy(out, h.entries)
	return out
}

// Average computes the field-wise mean over the trailing window.
// An empty window returns ErrNoData; callers must treat that distinctly
// from a zero-valued sample.
func (h *History) Average(window time.Duration) (models.ScalingMetrics, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := time.Now().Add(-window)

	var sum models.ScalingMetrics
	var connections, queued, count int
	for i := len(h.entries) - 1; i >= 0; i-- {
		m := h.entries[i].Metrics
		if m.Timestamp.Before(cutoff) {
			break
		}
		sum.CPUUtilization += m.CPUUtilization
		sum.MemoryUtilization += m.MemoryUtilization
		sum.NetworkThroughput += m.NetworkThroughput
		sum.RequestsPerSecond += m.RequestsPerSecond
		sum.ResponseTime += m.ResponseTime
		sum.ErrorRate += m.ErrorRate
		connections += m.ActiveConnections
		queued += m.QueueLength
		count++
	}

	if count == 0 {
		return models.ScalingMetrics{}, ErrNoData
	}

	n := float64(count)
	return models.ScalingMetrics{
		CPUUtilization:    sum.CPUUtilization / n,
		MemoryUtilization: sum.MemoryUtilization / n,
		NetworkThroughput: sum.NetworkThroughput / n,
		RequestsPerSecond: sum.RequestsPerSecond / n,
		ResponseTime:      sum.ResponseTime / n,
		ErrorRate:         sum.ErrorRate / n,
		ActiveConnections: connections / count,
		QueueLength:       queued / count,
		Timestamp:         h.entries[len(h.entries)-1].Metrics.Timestamp,
	}, nil
}
