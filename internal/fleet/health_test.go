package fleet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Keeps the recovery probe far away for tests asserting on the
// quarantined state itself.
func newQuarantineManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{
		StartupDelay:  10 * time.Millisecond,
		DrainDelay:    10 * time.Millisecond,
		RecoveryDelay: time.Hour,
	})
	t.Cleanup(m.Stop)
	return m
}

func staticProber(healthy bool, err error) Prober {
	return ProberFunc(func(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
		return healthy, err
	})
}

func TestHealthChecker_SuccessfulProbe(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("ok", 10)
	instance.HealthScore = 90
	m.Add(instance)

	hc := NewHealthChecker(m, HealthCheckerConfig{Prober: staticProber(true, nil)})
	hc.RunChecks(context.Background())

	got, _ := m.Get("ok")
	assert.Equal(t, 95.0, got.HealthScore)
	assert.False(t, got.LastHealthCheck.IsZero())
}

func TestHealthChecker_FailedVerdict(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("degraded", 10))

	hc := NewHealthChecker(m, HealthCheckerConfig{Prober: staticProber(false, nil)})
	hc.RunChecks(context.Background())

	got, _ := m.Get("degraded")
	assert.Equal(t, 80.0, got.HealthScore)
	assert.Equal(t, models.InstanceUnhealthy, got.Status)
}

func TestHealthChecker_ProberErrorZeroesScore(t *testing.T) {
	m := newQuarantineManager(t)
	m.Add(healthyInstance("broken", 10))

	hc := NewHealthChecker(m, HealthCheckerConfig{
		Prober: staticProber(false, errors.New("checker exploded")),
	})
	hc.RunChecks(context.Background())

	got, _ := m.Get("broken")
	assert.Equal(t, 0.0, got.HealthScore)
	assert.Equal(t, models.InstanceMaintenance, got.Status)
}

func TestHealthChecker_PanickingProberContained(t *testing.T) {
	m := newQuarantineManager(t)
	m.Add(healthyInstance("victim", 10))

	prober := ProberFunc(func(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
		panic("prober bug")
	})
	hc := NewHealthChecker(m, HealthCheckerConfig{Prober: prober})

	assert.NotPanics(t, func() { hc.RunChecks(context.Background()) })

	got, _ := m.Get("victim")
	assert.Equal(t, 0.0, got.HealthScore)
}

func TestHealthChecker_SkipsTransitioningInstances(t *testing.T) {
	m := newTestManager(t)

	starting := healthyInstance("starting", 10)
	starting.Status = models.InstanceStarting
	m.Add(starting)

	quarantined := healthyInstance("quarantined", 10)
	quarantined.Status = models.InstanceMaintenance
	quarantined.HealthScore = 10
	m.Add(quarantined)

	var probes int32
	prober := ProberFunc(func(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
		atomic.AddInt32(&probes, 1)
		return true, nil
	})
	NewHealthChecker(m, HealthCheckerConfig{Prober: prober}).RunChecks(context.Background())

	assert.Equal(t, int32(0), atomic.LoadInt32(&probes))
}

func TestHealthChecker_RecoveryProbeRestoresInstance(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("flaky", 10)
	instance.HealthScore = 20
	m.Add(instance)

	// First probe quarantines; the scheduled recovery probe succeeds.
	var verdicts int32
	prober := ProberFunc(func(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
		if atomic.AddInt32(&verdicts, 1) == 1 {
			return false, nil
		}
		return true, nil
	})
	hc := NewHealthChecker(m, HealthCheckerConfig{Prober: prober})
	hc.RunChecks(context.Background())

	assert.Eventually(t, func() bool {
		got, err := m.Get("flaky")
		return err == nil && got.Status == models.InstanceHealthy && got.HealthScore == 50.0
	}, time.Second, 5*time.Millisecond)
}

func TestHealthChecker_FailedRecoveryRemovesInstance(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("dying", 10)
	instance.HealthScore = 20
	m.Add(instance)

	hc := NewHealthChecker(m, HealthCheckerConfig{Prober: staticProber(false, nil)})
	hc.RunChecks(context.Background())

	assert.Eventually(t, func() bool {
		_, err := m.Get("dying")
		return errors.Is(err, ErrInstanceNotFound)
	}, time.Second, 5*time.Millisecond)
}

func TestHTTPProber(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	prober := NewHTTPProber(time.Second)

	ok, err := prober.Probe(context.Background(), &models.ServiceInstance{Endpoint: healthy.URL})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = prober.Probe(context.Background(), &models.ServiceInstance{Endpoint: failing.URL})
	require.NoError(t, err)
	assert.False(t, ok)

	// Unreachable endpoints are an unhealthy verdict, not a checker error.
	ok, err = prober.Probe(context.Background(), &models.ServiceInstance{Endpoint: "http://127.0.0.1:1"})
	require.NoError(t, err)
	assert.False(t, ok)
}
