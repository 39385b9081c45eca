package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/internal/actuator"
	"github.com/serviceops/fleet-autoscaler/internal/fleet"
	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/internal/notify"
	"github.com/serviceops/fleet-autoscaler/internal/optimizer"
	"github.com/serviceops/fleet-autoscaler/internal/policy"
	"github.com/serviceops/fleet-autoscaler/internal/predictor"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

type sourceFunc func(ctx context.Context) (models.ScalingMetrics, error)

func (f sourceFunc) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	return f(ctx)
}

type stubSource struct {
	cpu  float64
	err  error
	fail bool
}

func (s *stubSource) Sample(ctx context.Context) (models.ScalingMetrics, error) {
	if s.fail {
		return models.ScalingMetrics{}, s.err
	}
	return models.ScalingMetrics{
		CPUUtilization:    s.cpu,
		MemoryUtilization: 50,
		RequestsPerSecond: 200,
		ResponseTime:      150,
		Timestamp:         time.Now(),
	}, nil
}

func scaleOutPolicy(cooldown time.Duration) *models.ScalingPolicy {
	return &models.ScalingPolicy{
		ID:   "cpu-burst",
		Name: "CPU burst",
		Triggers: []models.ScalingTrigger{
			{Metric: models.MetricCPU, Comparator: models.ComparatorGT, Threshold: 80},
		},
		Actions: []models.ScalingAction{
			{Type: models.ActionScaleOut, Priority: 1, Parameters: map[string]interface{}{
				"increment": 2, "max_instances": 10,
			}},
		},
		Cooldown: cooldown,
		Enabled:  true,
		Priority: 1,
	}
}

// newTestMonitor wires a full pipeline around the given source with a
// three-instance healthy fleet and no policies. The monitor is never
// started; tests drive ticks directly.
func newTestMonitor(t *testing.T, source metrics.Source) (*Monitor, *fleet.Manager, *policy.Store) {
	t.Helper()

	fleetMgr := fleet.NewManager(fleet.ManagerConfig{
		StartupDelay:  10 * time.Millisecond,
		DrainDelay:    10 * time.Millisecond,
		RecoveryDelay: time.Hour,
	})
	t.Cleanup(fleetMgr.Stop)

	for _, id := range []string{"a", "b", "c"} {
		fleetMgr.Add(&models.ServiceInstance{
			ID:          id,
			Type:        models.InstanceTypeAPI,
			Status:      models.InstanceHealthy,
			Capacity:    50,
			CurrentLoad: 40,
			HealthScore: 100,
		})
	}

	sampler := metrics.NewSampler(metrics.SamplerConfig{
		Source:    source,
		Retention: 24 * time.Hour,
	})

	store := policy.NewStore()
	act := actuator.New(actuator.Config{
		Fleet:    fleetMgr,
		Notifier: notify.NewLogNotifier(),
		Template: actuator.ProvisionTemplate{
			Type:   models.InstanceTypeAPI,
			Region: "us-east-1",
			Zone:   "a",
		},
	})

	prober := fleet.ProberFunc(func(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
		return true, nil
	})

	m := New(Config{
		Interval:  time.Hour,
		Sampler:   sampler,
		Store:     store,
		Evaluator: policy.NewEvaluator(store),
		Actuator:  act,
		Fleet:     fleetMgr,
		Health:    fleet.NewHealthChecker(fleetMgr, fleet.HealthCheckerConfig{Prober: prober}),
		Predictor: predictor.NewRunner(predictor.RunnerConfig{
			History: sampler.History(),
			Fleet:   fleetMgr,
			Scaler:  act,
		}),
		Optimizer: optimizer.New(optimizer.Config{Fleet: fleetMgr}),
	})
	return m, fleetMgr, store
}

func TestMonitor_TickFiresPolicy(t *testing.T) {
	m, fleetMgr, store := newTestMonitor(t, &stubSource{cpu: 85})
	require.NoError(t, store.Add(scaleOutPolicy(10*time.Minute)))

	m.runTick()

	assert.Equal(t, 5, fleetMgr.Size())
}

func TestMonitor_CooldownSuppressesSecondTick(t *testing.T) {
	m, fleetMgr, store := newTestMonitor(t, &stubSource{cpu: 85})
	require.NoError(t, store.Add(scaleOutPolicy(10*time.Minute)))

	m.runTick()
	m.runTick()

	// The breach persists but the cooldown holds the second tick back.
	assert.Equal(t, 5, fleetMgr.Size())
}

func TestMonitor_SampleErrorSkipsEvaluation(t *testing.T) {
	m, fleetMgr, store := newTestMonitor(t, &stubSource{fail: true, err: errors.New("collector down")})
	require.NoError(t, store.Add(scaleOutPolicy(10*time.Minute)))

	m.runTick()

	assert.Equal(t, 3, fleetMgr.Size())
	assert.Nil(t, m.Status().LatestMetrics)
}

func TestMonitor_TickStillRunsHealthChecksAfterSampleError(t *testing.T) {
	m, fleetMgr, _ := newTestMonitor(t, &stubSource{fail: true, err: errors.New("collector down")})

	m.runTick()

	got, err := fleetMgr.Get("a")
	require.NoError(t, err)
	assert.False(t, got.LastHealthCheck.IsZero())
}

func TestMonitor_StartStop(t *testing.T) {
	m, _, _ := newTestMonitor(t, &stubSource{cpu: 40})

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	// Idempotent start.
	require.NoError(t, m.Start())

	m.Stop()
	assert.False(t, m.IsRunning())

	// Idempotent stop.
	m.Stop()
}

func TestMonitor_Status(t *testing.T) {
	m, _, store := newTestMonitor(t, &stubSource{cpu: 40})
	require.NoError(t, store.Add(scaleOutPolicy(10*time.Minute)))

	m.runTick()
	status := m.Status()

	assert.False(t, status.Running)
	assert.Equal(t, models.HealthStatusHealthy, status.HealthStatus)
	assert.Len(t, status.Instances, 3)

	require.Len(t, status.Policies, 1)
	assert.Equal(t, "cpu-burst", status.Policies[0].Policy.ID)
	assert.Zero(t, status.Policies[0].CooldownRemaining)

	require.NotNil(t, status.LatestMetrics)
	assert.Equal(t, 40.0, status.LatestMetrics.CPUUtilization)
	assert.False(t, status.GeneratedAt.IsZero())
}

func TestMonitor_StatusCooldownExposed(t *testing.T) {
	m, _, store := newTestMonitor(t, &stubSource{cpu: 85})
	require.NoError(t, store.Add(scaleOutPolicy(10*time.Minute)))

	m.runTick()
	status := m.Status()

	require.Len(t, status.Policies, 1)
	assert.Greater(t, status.Policies[0].CooldownRemaining, 9*time.Minute)
}

func TestMonitor_PolicyManagement(t *testing.T) {
	m, _, _ := newTestMonitor(t, &stubSource{cpu: 40})

	p := scaleOutPolicy(time.Minute)
	require.NoError(t, m.AddPolicy(p))
	assert.Len(t, m.ListPolicies(), 1)

	got, err := m.GetPolicy("cpu-burst")
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	require.NoError(t, m.DisablePolicy("cpu-burst"))
	got, _ = m.GetPolicy("cpu-burst")
	assert.False(t, got.Enabled)

	require.NoError(t, m.EnablePolicy("cpu-burst"))
	require.NoError(t, m.RemovePolicy("cpu-burst"))
	assert.Empty(t, m.ListPolicies())
}

func TestMonitor_Registrations(t *testing.T) {
	m, _, _ := newTestMonitor(t, &stubSource{cpu: 40})

	cluster := m.RegisterDatabaseCluster(models.DatabaseCluster{Name: "orders-primary"})
	assert.NotEmpty(t, cluster.ID)
	assert.False(t, cluster.RegisteredAt.IsZero())

	strategy := m.RegisterCacheStrategy(models.CacheStrategy{ID: "keep-me", Name: "edge-cache"})
	assert.Equal(t, "keep-me", strategy.ID)

	plan := m.RegisterDisasterRecoveryPlan(models.DisasterRecoveryPlan{Name: "east-west"})
	assert.NotEmpty(t, plan.ID)

	status := m.Status()
	assert.Len(t, status.DatabaseClusters, 1)
	assert.Len(t, status.CacheStrategies, 1)
	assert.Len(t, status.DRPlans, 1)
}

func TestMonitor_StagePanicContained(t *testing.T) {
	panicking := sourceFunc(func(ctx context.Context) (models.ScalingMetrics, error) {
		panic("collector bug")
	})
	m, fleetMgr, _ := newTestMonitor(t, panicking)

	assert.NotPanics(t, m.runTick)

	// The remaining stages still ran.
	got, err := fleetMgr.Get("a")
	require.NoError(t, err)
	assert.False(t, got.LastHealthCheck.IsZero())
}
