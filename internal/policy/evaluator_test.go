package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

func sampleMetrics(cpu, memory, latency float64) *models.ScalingMetrics {
	return &models.ScalingMetrics{
		CPUUtilization:    cpu,
		MemoryUtilization: memory,
		ResponseTime:      latency,
		Timestamp:         time.Now(),
	}
}

func instantPolicy(id string, priority int) *models.ScalingPolicy {
	p := validPolicy()
	p.ID = id
	p.Priority = priority
	p.Triggers[0].Sustain = 0
	p.Cooldown = 10 * time.Minute
	return p
}

func TestEvaluator_InstantaneousFire(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(instantPolicy("cpu-high", 1)))
	e := NewEvaluator(store)

	fired := e.Evaluate(time.Now(), sampleMetrics(85, 50, 100))
	require.Len(t, fired, 1)
	assert.Equal(t, "cpu-high", fired[0].ID)
}

func TestEvaluator_TriggersAreANDed(t *testing.T) {
	p := instantPolicy("cpu-and-memory", 1)
	p.Triggers = append(p.Triggers, models.ScalingTrigger{
		Metric:     models.MetricMemory,
		Comparator: models.ComparatorGT,
		Threshold:  70,
	})
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	// CPU breaches but memory does not: no fire.
	assert.Empty(t, e.Evaluate(time.Now(), sampleMetrics(85, 50, 100)))

	// Both breach: fires.
	fired := e.Evaluate(time.Now(), sampleMetrics(85, 75, 100))
	assert.Len(t, fired, 1)
}

func TestEvaluator_DisabledPolicyNeverFires(t *testing.T) {
	p := instantPolicy("disabled", 1)
	p.Enabled = false
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	assert.Empty(t, e.Evaluate(time.Now(), sampleMetrics(95, 90, 100)))
}

func TestEvaluator_SustainGating(t *testing.T) {
	p := validPolicy()
	p.ID = "sustained-cpu"
	p.Triggers[0].Sustain = 300 * time.Second
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	start := time.Now()
	breach := sampleMetrics(85, 50, 100)

	// First breach observation starts the window; nothing fires.
	assert.Empty(t, e.Evaluate(start, breach))

	// Still inside the sustain window.
	assert.Empty(t, e.Evaluate(start.Add(100*time.Second), breach))

	// Window satisfied: fires.
	fired := e.Evaluate(start.Add(301*time.Second), breach)
	assert.Len(t, fired, 1)
}

func TestEvaluator_SustainResetsWhenConditionDrops(t *testing.T) {
	p := validPolicy()
	p.ID = "sustained-cpu"
	p.Triggers[0].Sustain = 300 * time.Second
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	start := time.Now()
	assert.Empty(t, e.Evaluate(start, sampleMetrics(85, 50, 100)))

	// Condition clears mid-window: the breach window resets.
	assert.Empty(t, e.Evaluate(start.Add(200*time.Second), sampleMetrics(40, 50, 100)))

	// Breaching again must sustain the full duration from scratch.
	assert.Empty(t, e.Evaluate(start.Add(250*time.Second), sampleMetrics(85, 50, 100)))
	assert.Empty(t, e.Evaluate(start.Add(500*time.Second), sampleMetrics(85, 50, 100)))
	fired := e.Evaluate(start.Add(551*time.Second), sampleMetrics(85, 50, 100))
	assert.Len(t, fired, 1)
}

func TestEvaluator_CooldownSuppression(t *testing.T) {
	p := instantPolicy("cpu-high", 1)
	p.Cooldown = 600 * time.Second
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	start := time.Now()
	breach := sampleMetrics(85, 50, 100)

	require.Len(t, e.Evaluate(start, breach), 1)

	// Condition persists but the cooldown clock suppresses re-firing.
	assert.Empty(t, e.Evaluate(start.Add(time.Second), breach))
	assert.Empty(t, e.Evaluate(start.Add(599*time.Second), breach))

	// Cooldown expired: eligible again.
	fired := e.Evaluate(start.Add(601*time.Second), breach)
	assert.Len(t, fired, 1)
}

func TestEvaluator_CooldownRecordedBeforeExecution(t *testing.T) {
	p := instantPolicy("cpu-high", 1)
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	now := time.Now()
	require.Len(t, e.Evaluate(now, sampleMetrics(85, 50, 100)), 1)

	// The clock was set at evaluation time, not after any action ran.
	remaining := e.CooldownRemaining("cpu-high")
	assert.Greater(t, remaining, 9*time.Minute)
}

func TestEvaluator_EvaluationOrder(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(instantPolicy("second", 2)))
	require.NoError(t, store.Add(instantPolicy("first", 1)))
	e := NewEvaluator(store)

	fired := e.Evaluate(time.Now(), sampleMetrics(85, 50, 100))
	require.Len(t, fired, 2)
	assert.Equal(t, "first", fired[0].ID)
	assert.Equal(t, "second", fired[1].ID)
}

func TestEvaluator_ResetCooldown(t *testing.T) {
	p := instantPolicy("cpu-high", 1)
	store := NewStore()
	require.NoError(t, store.Add(p))
	e := NewEvaluator(store)

	now := time.Now()
	require.Len(t, e.Evaluate(now, sampleMetrics(85, 50, 100)), 1)
	assert.Empty(t, e.Evaluate(now.Add(time.Second), sampleMetrics(85, 50, 100)))

	e.ResetCooldown("cpu-high")
	assert.Len(t, e.Evaluate(now.Add(2*time.Second), sampleMetrics(85, 50, 100)), 1)
}

func TestSustainedTracker(t *testing.T) {
	tracker := NewSustainedTracker()
	start := time.Now()

	assert.Equal(t, time.Duration(0), tracker.Observe("p", true, start))
	assert.Equal(t, 10*time.Second, tracker.Observe("p", true, start.Add(10*time.Second)))

	// A miss resets the window.
	assert.Equal(t, time.Duration(0), tracker.Observe("p", false, start.Add(20*time.Second)))
	assert.Equal(t, time.Duration(0), tracker.Observe("p", true, start.Add(30*time.Second)))
	assert.Equal(t, 5*time.Second, tracker.Observe("p", true, start.Add(35*time.Second)))
}
