package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

const (
	rightSizeLoadCeiling   = 20
	rightSizeCapacityFloor = 30
	cacheHitRatioFloor     = 0.8
	compressionRatioFloor  = 0.6
)

// RatioProvider returns a 0-1 ratio from an external collaborator
// (cache layer, storage layer). Provider failures degrade to "no
// recommendation for that category".
type RatioProvider func(ctx context.Context) (float64, error)

// FleetReader is the read-only fleet view the optimizer analyzes.
type FleetReader interface {
	Snapshot() []models.ServiceInstance
}

// Optimizer is a pure analysis pass: it flags right-sizing candidates,
// cache investment, and compression opportunities, and never mutates
// anything.
type Optimizer struct {
	fleet       FleetReader
	cacheRatio  RatioProvider
	compression RatioProvider
}

type Config struct {
	Fleet            FleetReader
	CacheHitRatio    RatioProvider
	CompressionRatio RatioProvider
}

func New(cfg Config) *Optimizer {
	return &Optimizer{
		fleet:       cfg.Fleet,
		cacheRatio:  cfg.CacheHitRatio,
		compression: cfg.CompressionRatio,
	}
}

// Analyze produces the ranked recommendation list. Insufficient data is
// an empty result, never an error.
func (o *Optimizer) Analyze(ctx context.Context) []models.Recommendation {
	now := time.Now()
	var recs []models.Recommendation

	if o.fleet != nil {
		for _, instance := range o.fleet.Snapshot() {
			if instance.CurrentLoad < rightSizeLoadCeiling && instance.Capacity > rightSizeCapacityFloor {
				recs = append(recs, models.Recommendation{
					Category: models.RecommendationRightSize,
					Target:   instance.ID,
					Impact: fmt.Sprintf(
						"instance at %.0f%% load with capacity %.0f; reduce allocation",
						instance.CurrentLoad, instance.Capacity),
					EstimatedSavings: (instance.Capacity - rightSizeCapacityFloor) / instance.Capacity * 100,
					Risk:             "low: instance is far below its provisioned capacity",
					GeneratedAt:      now,
				})
			}
		}
	}

	if ratio, ok := o.collectRatio(ctx, o.cacheRatio, "cache hit ratio"); ok && ratio < cacheHitRatioFloor {
		recs = append(recs, models.Recommendation{
			Category: models.RecommendationCaching,
			Impact: fmt.Sprintf(
				"cache hit ratio %.2f below %.2f; expand cache coverage", ratio, cacheHitRatioFloor),
			EstimatedSavings: (cacheHitRatioFloor - ratio) * 100,
			Risk:             "medium: cache warmup increases backend load temporarily",
			GeneratedAt:      now,
		})
	}

	if ratio, ok := o.collectRatio(ctx, o.compression, "compression ratio"); ok && ratio < compressionRatioFloor {
		recs = append(recs, models.Recommendation{
			Category: models.RecommendationCompression,
			Impact: fmt.Sprintf(
				"compression ratio %.2f below %.2f; enable response compression", ratio, compressionRatioFloor),
			EstimatedSavings: (compressionRatioFloor - ratio) * 100,
			Risk:             "low: CPU cost of compression is marginal at current load",
			GeneratedAt:      now,
		})
	}

	// Rank by estimated savings, best first.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].EstimatedSavings > recs[j].EstimatedSavings
	})
	for i := range recs {
		recs[i].Rank = i + 1
	}

	return recs
}

func (o *Optimizer) collectRatio(ctx context.Context, provider RatioProvider, name string) (float64, bool) {
	if provider == nil {
		return 0, false
	}
	ratio, err := provider(ctx)
	if err != nil {
		logger.Debugf("Optimizer: %s unavailable: %v", name, err)
		return 0, false
	}
	if ratio < 0 || ratio > 1 {
		logger.Warnf("Optimizer: %s out of range: %.3f", name, ratio)
		return 0, false
	}
	return ratio, true
}
