package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

func healthyInstance(id string, load float64) *models.ServiceInstance {
	return &models.ServiceInstance{
		ID:          id,
		Type:        models.InstanceTypeAPI,
		Status:      models.InstanceHealthy,
		Capacity:    50,
		CurrentLoad: load,
		HealthScore: 100,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{
		StartupDelay:  10 * time.Millisecond,
		DrainDelay:    10 * time.Millisecond,
		RecoveryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(m.Stop)
	return m
}

func TestManager_AddStartingPromotes(t *testing.T) {
	m := newTestManager(t)

	instance := models.NewInstance(models.InstanceTypeAPI, "us-east-1", "a", "")
	m.AddStarting(instance)

	got, err := m.Get(instance.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStarting, got.Status)
	assert.Equal(t, 0, m.HealthyCount())

	assert.Eventually(t, func() bool {
		got, err := m.Get(instance.ID)
		return err == nil && got.Status == models.InstanceHealthy
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StopResolvesStartingInstances(t *testing.T) {
	m := NewManager(ManagerConfig{
		StartupDelay: time.Hour,
		DrainDelay:   time.Hour,
	})

	instance := models.NewInstance(models.InstanceTypeAPI, "us-east-1", "a", "")
	m.AddStarting(instance)

	m.Stop()

	// Shutdown applies the pending promotion instead of abandoning it.
	got, err := m.Get(instance.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceHealthy, got.Status)
}

func TestManager_StopResolvesDrainingInstances(t *testing.T) {
	m := NewManager(ManagerConfig{
		StartupDelay: time.Hour,
		DrainDelay:   time.Hour,
	})

	m.Add(healthyInstance("draining", 10))
	require.NoError(t, m.BeginDrain("draining"))

	m.Stop()

	_, err := m.Get("draining")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestManager_BeginDrainRemoves(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("victim", 10))

	require.NoError(t, m.BeginDrain("victim"))

	got, err := m.Get("victim")
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStopping, got.Status)
	assert.False(t, got.ServesTraffic())

	assert.Eventually(t, func() bool {
		_, err := m.Get("victim")
		return err != nil
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, m.BeginDrain("missing"), ErrInstanceNotFound)
}

func TestManager_HealthScoreAccrual(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("scored", 10)
	instance.HealthScore = 97
	m.Add(instance)
	now := time.Now()

	// +5 clamps at 100.
	m.RecordHealthy("scored", now)
	got, _ := m.Get("scored")
	assert.Equal(t, 100.0, got.HealthScore)

	// -20 per failed probe.
	m.RecordUnhealthy("scored", now, false)
	got, _ = m.Get("scored")
	assert.Equal(t, 80.0, got.HealthScore)
	assert.Equal(t, models.InstanceUnhealthy, got.Status)

	// A success transitions back to healthy.
	m.RecordHealthy("scored", now)
	got, _ = m.Get("scored")
	assert.Equal(t, 85.0, got.HealthScore)
	assert.Equal(t, models.InstanceHealthy, got.Status)
}

func TestManager_QuarantineBelowThreshold(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("failing", 10)
	instance.HealthScore = 45
	m.Add(instance)
	now := time.Now()

	// 45 -> 25: crosses below 30 and quarantines.
	quarantined := m.RecordUnhealthy("failing", now, false)
	assert.True(t, quarantined)

	got, _ := m.Get("failing")
	assert.Equal(t, models.InstanceMaintenance, got.Status)
	assert.Equal(t, 25.0, got.HealthScore)
	assert.False(t, got.ServesTraffic())
}

func TestManager_ExactThresholdNotQuarantined(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("edge", 10)
	instance.HealthScore = 50
	m.Add(instance)

	// 50 -> 30: exactly at the threshold stays in service.
	quarantined := m.RecordUnhealthy("edge", time.Now(), false)
	assert.False(t, quarantined)

	got, _ := m.Get("edge")
	assert.Equal(t, models.InstanceUnhealthy, got.Status)
	assert.Equal(t, 30.0, got.HealthScore)
}

func TestManager_ProbeErrorZeroesScore(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("broken", 10))

	quarantined := m.RecordUnhealthy("broken", time.Now(), true)
	assert.True(t, quarantined)

	got, _ := m.Get("broken")
	assert.Equal(t, 0.0, got.HealthScore)
	assert.Equal(t, models.InstanceMaintenance, got.Status)
}

func TestManager_Recover(t *testing.T) {
	m := newTestManager(t)
	instance := healthyInstance("quarantined", 10)
	instance.Status = models.InstanceMaintenance
	instance.HealthScore = 5
	m.Add(instance)

	m.Recover("quarantined")

	got, _ := m.Get("quarantined")
	assert.Equal(t, models.InstanceHealthy, got.Status)
	assert.Equal(t, 50.0, got.HealthScore)

	// Recover only applies to quarantined instances.
	m.Recover("quarantined")
	got, _ = m.Get("quarantined")
	assert.Equal(t, 50.0, got.HealthScore)
}

func TestManager_TotalCapacityCountsServingOnly(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("a", 10))
	m.Add(healthyInstance("b", 10))

	starting := healthyInstance("c", 10)
	starting.Status = models.InstanceStarting
	m.Add(starting)

	assert.Equal(t, 100.0, m.TotalCapacity())
	assert.Equal(t, 3, m.Size())
	assert.Equal(t, 2, m.HealthyCount())
}

func TestManager_ScaleCapacityClamps(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("a", 10))

	// 50 -> 75 -> 100 (capped).
	assert.Equal(t, 1, m.ScaleCapacity(1.5, 10, 100))
	got, _ := m.Get("a")
	assert.Equal(t, 75.0, got.Capacity)

	m.ScaleCapacity(1.5, 10, 100)
	got, _ = m.Get("a")
	assert.Equal(t, 100.0, got.Capacity)

	// Repeated scale-down floors at 10.
	for i := 0; i < 15; i++ {
		m.ScaleCapacity(0.8, 10, 100)
	}
	got, _ = m.Get("a")
	assert.Equal(t, 10.0, got.Capacity)
}

func TestManager_ScaleCapacitySkipsNonHealthy(t *testing.T) {
	m := newTestManager(t)
	quarantined := healthyInstance("q", 10)
	quarantined.Status = models.InstanceMaintenance
	m.Add(quarantined)

	assert.Equal(t, 0, m.ScaleCapacity(1.5, 10, 100))
	got, _ := m.Get("q")
	assert.Equal(t, 50.0, got.Capacity)
}

func TestManager_LowestLoad(t *testing.T) {
	m := newTestManager(t)
	m.Add(healthyInstance("busy", 90))
	m.Add(healthyInstance("idle", 5))
	m.Add(healthyInstance("medium", 40))

	starting := healthyInstance("starting", 1)
	starting.Status = models.InstanceStarting
	m.Add(starting)

	victims := m.LowestLoad(2)
	require.Len(t, victims, 2)
	assert.Equal(t, "idle", victims[0])
	assert.Equal(t, "medium", victims[1])

	// Never selects more than the healthy population.
	assert.Len(t, m.LowestLoad(10), 3)
}
