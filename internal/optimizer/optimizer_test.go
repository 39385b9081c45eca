package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

type stubFleet struct {
	instances []models.ServiceInstance
}

func (s *stubFleet) Snapshot() []models.ServiceInstance {
	return s.instances
}

func ratio(value float64, err error) RatioProvider {
	return func(ctx context.Context) (float64, error) {
		return value, err
	}
}

func TestOptimizer_RightSizeFlagging(t *testing.T) {
	fleet := &stubFleet{instances: []models.ServiceInstance{
		{ID: "idle", Status: models.InstanceHealthy, CurrentLoad: 10, Capacity: 80},
		{ID: "busy", Status: models.InstanceHealthy, CurrentLoad: 75, Capacity: 80},
		{ID: "small", Status: models.InstanceHealthy, CurrentLoad: 10, Capacity: 25},
	}}
	o := New(Config{Fleet: fleet})

	recs := o.Analyze(context.Background())

	require.Len(t, recs, 1)
	assert.Equal(t, models.RecommendationRightSize, recs[0].Category)
	assert.Equal(t, "idle", recs[0].Target)
	assert.Equal(t, 1, recs[0].Rank)
}

func TestOptimizer_CacheAndCompression(t *testing.T) {
	o := New(Config{
		CacheHitRatio:    ratio(0.60, nil),
		CompressionRatio: ratio(0.40, nil),
	})

	recs := o.Analyze(context.Background())

	require.Len(t, recs, 2)
	// Equal savings (20 points each), so the stable sort keeps insertion
	// order while ranks stay sequential.
	categories := []models.RecommendationCategory{recs[0].Category, recs[1].Category}
	assert.Contains(t, categories, models.RecommendationCaching)
	assert.Contains(t, categories, models.RecommendationCompression)
	assert.Equal(t, 1, recs[0].Rank)
	assert.Equal(t, 2, recs[1].Rank)
}

func TestOptimizer_HealthyRatiosProduceNothing(t *testing.T) {
	o := New(Config{
		CacheHitRatio:    ratio(0.95, nil),
		CompressionRatio: ratio(0.70, nil),
	})

	assert.Empty(t, o.Analyze(context.Background()))
}

func TestOptimizer_ProviderFailuresSkipped(t *testing.T) {
	o := New(Config{
		CacheHitRatio:    ratio(0, errors.New("cache stats offline")),
		CompressionRatio: ratio(1.7, nil), // out of range
	})

	assert.Empty(t, o.Analyze(context.Background()))
}

func TestOptimizer_Ranking(t *testing.T) {
	fleet := &stubFleet{instances: []models.ServiceInstance{
		{ID: "very-idle", Status: models.InstanceHealthy, CurrentLoad: 5, Capacity: 100},
	}}
	o := New(Config{
		Fleet:         fleet,
		CacheHitRatio: ratio(0.75, nil),
	})

	recs := o.Analyze(context.Background())

	require.Len(t, recs, 2)
	// Right-size savings (70%) outrank the small cache shortfall (5%).
	assert.Equal(t, models.RecommendationRightSize, recs[0].Category)
	assert.Equal(t, models.RecommendationCaching, recs[1].Category)
	assert.Greater(t, recs[0].EstimatedSavings, recs[1].EstimatedSavings)
}
