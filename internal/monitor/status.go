package monitor

import (
	"time"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Number of near-term predictions surfaced in the status snapshot.
const statusPredictions = 6

// PolicyStatus pairs a policy with its live cooldown state.
type PolicyStatus struct {
	Policy            models.ScalingPolicy `json:"policy"`
	CooldownRemaining time.Duration        `json:"cooldown_remaining"`
}

// Status is the consolidated read-only snapshot the facade exposes.
type Status struct {
	Running          bool                          `json:"running"`
	HealthStatus     models.HealthStatus           `json:"health_status"`
	Instances        []models.ServiceInstance      `json:"instances"`
	Policies         []PolicyStatus                `json:"policies"`
	LatestMetrics    *models.ScalingMetrics        `json:"latest_metrics,omitempty"`
	Predictions      []models.ScalingPrediction    `json:"predictions,omitempty"`
	Recommendations  []models.Recommendation       `json:"recommendations,omitempty"`
	DatabaseClusters []models.DatabaseCluster      `json:"database_clusters,omitempty"`
	CacheStrategies  []models.CacheStrategy        `json:"cache_strategies,omitempty"`
	DRPlans          []models.DisasterRecoveryPlan `json:"dr_plans,omitempty"`
	GeneratedAt      time.Time                     `json:"generated_at"`
}

// Status assembles the consolidated snapshot.
func (m *Monitor) Status() Status {
	instances := m.fleet.Snapshot()

	healthy := 0
	for _, instance := range instances {
		if instance.Status == models.InstanceHealthy {
			healthy++
		}
	}

	policies := make([]PolicyStatus, 0, m.store.Len())
	for _, p := range m.store.List() {
		policies = append(policies, PolicyStatus{
			Policy:            *p,
			CooldownRemaining: m.evaluator.CooldownRemaining(p.ID),
		})
	}

	m.stateMu.RLock()
	var latest *models.ScalingMetrics
	if m.latestMetrics != nil {
		copied := *m.latestMetrics
		latest = &copied
	}
	recs := make([]models.Recommendation, len(m.recommendations))
	copy(recs, m.recommendations)
	dbClusters := make([]models.DatabaseCluster, len(m.dbClusters))
	copy(dbClusters, m.dbClusters)
	cacheStrategies := make([]models.CacheStrategy, len(m.cacheStrategies))
	copy(cacheStrategies, m.cacheStrategies)
	drPlans := make([]models.DisasterRecoveryPlan, len(m.drPlans))
	copy(drPlans, m.drPlans)
	m.stateMu.RUnlock()

	return Status{
		Running:          m.IsRunning(),
		HealthStatus:     models.AggregateHealth(healthy, len(instances)),
		Instances:        instances,
		Policies:         policies,
		LatestMetrics:    latest,
		Predictions:      m.predictor.Predictions(statusPredictions),
		Recommendations:  recs,
		DatabaseClusters: dbClusters,
		CacheStrategies:  cacheStrategies,
		DRPlans:          drPlans,
		GeneratedAt:      time.Now(),
	}
}
