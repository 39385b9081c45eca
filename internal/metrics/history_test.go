package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

func entryAt(ts time.Time, cpu float64) models.HistoricalMetric {
	return models.HistoricalMetric{
		Metrics: models.ScalingMetrics{
			CPUUtilization: cpu,
			Timestamp:      ts,
		},
	}
}

func TestHistory_RetentionTrim(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now()

	h.Append(entryAt(now.Add(-2*time.Hour), 10))
	h.Append(entryAt(now.Add(-90*time.Minute), 20))
	assert.Equal(t, 2, h.Len())

	// The new sample anchors the horizon; both old entries fall out.
	h.Append(entryAt(now, 30))
	assert.Equal(t, 1, h.Len())

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 30.0, latest.Metrics.CPUUtilization)
}

func TestHistory_RetentionKeepsWindow(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now()

	h.Append(entryAt(now.Add(-50*time.Minute), 10))
	h.Append(entryAt(now.Add(-30*time.Minute), 20))
	h.Append(entryAt(now, 30))

	assert.Equal(t, 3, h.Len())
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now()

	for i := 0; i < 5; i++ {
		h.Append(entryAt(now.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	recent := h.Recent(3)
	require.Len(t, recent, 3)
	// Oldest first.
	assert.Equal(t, 2.0, recent[0].Metrics.CPUUtilization)
	assert.Equal(t, 4.0, recent[2].Metrics.CPUUtilization)

	assert.Len(t, h.Recent(10), 5)
	assert.Nil(t, h.Recent(0))
}

func TestHistory_AverageEmptyReturnsErrNoData(t *testing.T) {
	h := NewHistory(time.Hour)

	_, err := h.Average(5 * time.Minute)
	assert.ErrorIs(t, err, ErrNoData)

	// Samples outside the window also yield ErrNoData.
	h.Append(entryAt(time.Now().Add(-30*time.Minute), 50))
	_, err = h.Average(5 * time.Minute)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestHistory_AverageZeroMetricsIsNotNoData(t *testing.T) {
	h := NewHistory(time.Hour)
	h.Append(entryAt(time.Now(), 0))

	avg, err := h.Average(5 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg.CPUUtilization)
}

func TestHistory_Average(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now()

	h.Append(entryAt(now.Add(-2*time.Minute), 40))
	h.Append(entryAt(now.Add(-time.Minute), 60))
	h.Append(entryAt(now, 80))

	avg, err := h.Average(5 * time.Minute)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, avg.CPUUtilization, 0.001)
}
