package policy

import (
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// DefaultPolicies are the three built-in rules every deployment starts
// with: CPU-pressure scale-out, latency scale-out, and idle scale-in.
func DefaultPolicies() []*models.ScalingPolicy {
	return []*models.ScalingPolicy{
		{
			ID:   "high-cpu-scale-out",
			Name: "High CPU Scale Out",
			Triggers: []models.ScalingTrigger{
				{
					Metric:     models.MetricCPU,
					Comparator: models.ComparatorGT,
					Threshold:  80,
					Sustain:    300 * time.Second,
				},
			},
			Actions: []models.ScalingAction{
				{
					Type:     models.ActionScaleOut,
					Priority: 1,
					Parameters: map[string]interface{}{
						"increment":     2,
						"max_instances": 20,
					},
				},
			},
			Cooldown: 600 * time.Second,
			Enabled:  true,
			Priority: 1,
		},
		{
			ID:   "high-latency-scale-out",
			Name: "High Latency Scale Out",
			Triggers: []models.ScalingTrigger{
				{
					Metric:     models.MetricResponse,
					Comparator: models.ComparatorGT,
					Threshold:  2000,
					Sustain:    180 * time.Second,
				},
			},
			Actions: []models.ScalingAction{
				{
					Type:     models.ActionScaleOut,
					Priority: 1,
					Parameters: map[string]interface{}{
						"increment":     1,
						"max_instances": 15,
					},
				},
			},
			Cooldown: 300 * time.Second,
			Enabled:  true,
			Priority: 2,
		},
		{
			ID:   "low-utilization-scale-in",
			Name: "Low Utilization Scale In",
			Triggers: []models.ScalingTrigger{
				{
					Metric:     models.MetricCPU,
					Comparator: models.ComparatorLT,
					Threshold:  20,
					Sustain:    1200 * time.Second,
				},
				{
					Metric:     models.MetricMemory,
					Comparator: models.ComparatorLT,
					Threshold:  30,
					Sustain:    1200 * time.Second,
				},
			},
			Actions: []models.ScalingAction{
				{
					Type:     models.ActionScaleIn,
					Priority: 1,
					Parameters: map[string]interface{}{
						"decrement":     1,
						"min_instances": 2,
					},
				},
			},
			Cooldown: 900 * time.Second,
			Enabled:  true,
			Priority: 3,
		},
	}
}
