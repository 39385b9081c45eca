package fleet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

var (
	ErrInstanceNotFound = errors.New("instance not found")
)

const (
	// Health score floor below which an unhealthy instance is pulled
	// from service and quarantined.
	QuarantineThreshold = 30

	// Score an instance restarts with after surviving its recovery probe.
	recoveredHealthScore = 50
)

// Manager owns every ServiceInstance record. All mutation goes through
// the manager's single mutex; the actuator and predictor only request
// capacity or membership changes.
type Manager struct {
	instances map[string]*models.ServiceInstance
	mu        sync.RWMutex

	publisher *events.Publisher

	startupDelay  time.Duration
	drainDelay    time.Duration
	recoveryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ManagerConfig struct {
	StartupDelay  time.Duration
	DrainDelay    time.Duration
	RecoveryDelay time.Duration
	Publisher     *events.Publisher
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.StartupDelay == 0 {
		cfg.StartupDelay = 30 * time.Second
	}
	if cfg.DrainDelay == 0 {
		cfg.DrainDelay = 30 * time.Second
	}
	if cfg.RecoveryDelay == 0 {
		cfg.RecoveryDelay = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		instances:     make(map[string]*models.ServiceInstance),
		publisher:     cfg.Publisher,
		startupDelay:  cfg.StartupDelay,
		drainDelay:    cfg.DrainDelay,
		recoveryDelay: cfg.RecoveryDelay,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Stop cancels all pending deferred transitions and waits for them to
// settle. Startup and drain transitions are applied immediately on
// cancellation so no instance is ever left stuck in starting/stopping.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

// schedule runs onFire after delay. If the manager stops first, onCancel
// runs instead (which may be the same transition, applied early).
func (m *Manager) schedule(delay time.Duration, onFire, onCancel func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			onFire()
		case <-m.ctx.Done():
			if onCancel != nil {
				onCancel()
			}
		}
	}()
}

// Add registers an instance as-is (fleet seeding, tests).
func (m *Manager) Add(instance *models.ServiceInstance) {
	m.mu.Lock()
	copied := *instance
	m.instances[copied.ID] = &copied
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.InstanceAdded(&copied)
	}
	logger.WithInstance(copied.ID).Infof("Instance added (%s, %s)", copied.Type, copied.Status)
}

// AddStarting registers a freshly provisioned instance and schedules its
// promotion to healthy after the startup delay. The caller does not wait.
func (m *Manager) AddStarting(instance *models.ServiceInstance) {
	instance.Status = models.InstanceStarting
	m.Add(instance)

	id := instance.ID
	m.schedule(m.startupDelay, func() {
		m.promote(id)
	}, func() {
		// Shutdown: finish the startup immediately rather than
		// abandoning the instance mid-provision.
		m.promote(id)
	})
}

func (m *Manager) promote(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	instance, exists := m.instances[id]
	if !exists || instance.Status != models.InstanceStarting {
		return
	}
	instance.Status = models.InstanceHealthy
	logger.WithInstance(id).Info("Instance started and serving")
}

// BeginDrain marks an instance stopping and schedules its removal after
// the graceful-shutdown delay.
func (m *Manager) BeginDrain(id string) error {
	m.mu.Lock()
	instance, exists := m.instances[id]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	instance.Status = models.InstanceStopping
	m.mu.Unlock()

	logger.WithInstance(id).Info("Instance draining")

	m.schedule(m.drainDelay, func() {
		m.Remove(id, "scale_in")
	}, func() {
		m.Remove(id, "scale_in (shutdown)")
	})
	return nil
}

func (m *Manager) Remove(id, reason string) {
	m.mu.Lock()
	_, exists := m.instances[id]
	delete(m.instances, id)
	m.mu.Unlock()

	if !exists {
		return
	}
	if m.publisher != nil {
		m.publisher.InstanceRemoved(id, reason)
	}
	logger.WithInstance(id).Infof("Instance removed: %s", reason)
}

// Get returns a copy of the instance record.
func (m *Manager) Get(id string) (models.ServiceInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instance, exists := m.instances[id]
	if !exists {
		return models.ServiceInstance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return *instance, nil
}

// Snapshot returns copies of every tracked instance, ordered by ID for
// stable output.
func (m *Manager) Snapshot() []models.ServiceInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ServiceInstance, 0, len(m.instances))
	for _, instance := range m.instances {
		out = append(out, *instance)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

func (m *Manager) HealthyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, instance := range m.instances {
		if instance.Status == models.InstanceHealthy {
			count++
		}
	}
	return count
}

// TotalCapacity sums capacity across traffic-serving instances.
func (m *Manager) TotalCapacity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, instance := range m.instances {
		if instance.ServesTraffic() {
			total += instance.Capacity
		}
	}
	return total
}

// ScaleCapacity multiplies every healthy instance's capacity, clamped to
// [floor, ceiling]. Used by scale_up (x1.5 cap 100) and scale_down
// (x0.8 floor 10).
func (m *Manager) ScaleCapacity(multiplier, floor, ceiling float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	adjusted := 0
	for _, instance := range m.instances {
		if instance.Status != models.InstanceHealthy {
			continue
		}
		capacity := instance.Capacity * multiplier
		if capacity > ceiling {
			capacity = ceiling
		}
		if capacity < floor {
			capacity = floor
		}
		instance.Capacity = capacity
		adjusted++
	}
	return adjusted
}

// LowestLoad returns the IDs of up to n healthy instances with the
// lowest current load, used for scale-in victim selection.
func (m *Manager) LowestLoad(n int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]*models.ServiceInstance, 0, len(m.instances))
	for _, instance := range m.instances {
		if instance.Status == models.InstanceHealthy {
			candidates = append(candidates, instance)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CurrentLoad != candidates[j].CurrentLoad {
			return candidates[i].CurrentLoad < candidates[j].CurrentLoad
		}
		return candidates[i].ID < candidates[j].ID
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	ids := make([]string, 0, n)
	for _, instance := range candidates[:n] {
		ids = append(ids, instance.ID)
	}
	return ids
}

// RecordHealthy applies a successful probe: +5 health score (capped at
// 100) and a transition back to healthy.
func (m *Manager) RecordHealthy(id string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	instance, exists := m.instances[id]
	if !exists {
		return
	}
	instance.HealthScore += 5
	instance.ClampHealthScore()
	instance.Status = models.InstanceHealthy
	instance.LastHealthCheck = now
}

// RecordUnhealthy applies a failed probe: -20 health score (floored at
// 0), or a hard reset to 0 when the probe itself errored rather than
// reporting failure. Returns true when the instance crossed the
// quarantine threshold and was moved to maintenance.
func (m *Manager) RecordUnhealthy(id string, now time.Time, probeErrored bool) bool {
	m.mu.Lock()

	instance, exists := m.instances[id]
	if !exists {
		m.mu.Unlock()
		return false
	}

	if probeErrored {
		instance.HealthScore = 0
	} else {
		instance.HealthScore -= 20
	}
	instance.ClampHealthScore()
	instance.Status = models.InstanceUnhealthy
	instance.LastHealthCheck = now

	quarantine := instance.HealthScore < QuarantineThreshold
	if quarantine {
		instance.Status = models.InstanceMaintenance
	}
	copied := *instance
	m.mu.Unlock()

	if quarantine {
		logger.WithInstance(id).Warnf(
			"Instance quarantined, health score %.0f below %d", copied.HealthScore, QuarantineThreshold)
		if m.publisher != nil {
			m.publisher.InstanceQuarantined(&copied)
		}
	}
	return quarantine
}

// Recover returns a quarantined instance to service with a reset score.
func (m *Manager) Recover(id string) {
	m.mu.Lock()
	instance, exists := m.instances[id]
	if !exists || instance.Status != models.InstanceMaintenance {
		m.mu.Unlock()
		return
	}
	instance.Status = models.InstanceHealthy
	instance.HealthScore = recoveredHealthScore
	copied := *instance
	m.mu.Unlock()

	logger.WithInstance(id).Info("Instance recovered from quarantine")
	if m.publisher != nil {
		m.publisher.InstanceRecovered(&copied)
	}
}

// ScheduleRecovery defers fn by the quarantine recovery delay. On
// shutdown the recovery attempt is discarded; the instance keeps its
// maintenance status, which is a safe terminal state.
func (m *Manager) ScheduleRecovery(fn func()) {
	m.schedule(m.recoveryDelay, fn, nil)
}
