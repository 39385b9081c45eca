package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/actuator"
	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/internal/fleet"
	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/internal/optimizer"
	"github.com/serviceops/fleet-autoscaler/internal/policy"
	"github.com/serviceops/fleet-autoscaler/internal/predictor"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Monitor is the orchestration facade: it owns the fixed-period
// scheduler driving sample -> evaluate/act -> health-check -> predictive
// refresh -> optimize, and exposes the consolidated status snapshot.
// Construct one per deployment and inject its collaborators; there is no
// process-wide singleton.
type Monitor struct {
	interval time.Duration

	sampler   *metrics.Sampler
	store     *policy.Store
	evaluator *policy.Evaluator
	actuator  *actuator.Actuator
	fleet     *fleet.Manager
	health    *fleet.HealthChecker
	predictor *predictor.Runner
	optimizer *optimizer.Optimizer
	publisher *events.Publisher

	latestMetrics   *models.ScalingMetrics
	recommendations []models.Recommendation
	dbClusters      []models.DatabaseCluster
	cacheStrategies []models.CacheStrategy
	drPlans         []models.DisasterRecoveryPlan
	stateMu         sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	runMu   sync.Mutex
}

type Config struct {
	Interval  time.Duration
	Sampler   *metrics.Sampler
	Store     *policy.Store
	Evaluator *policy.Evaluator
	Actuator  *actuator.Actuator
	Fleet     *fleet.Manager
	Health    *fleet.HealthChecker
	Predictor *predictor.Runner
	Optimizer *optimizer.Optimizer
	Publisher *events.Publisher
}

func New(cfg Config) *Monitor {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		interval:  cfg.Interval,
		sampler:   cfg.Sampler,
		store:     cfg.Store,
		evaluator: cfg.Evaluator,
		actuator:  cfg.Actuator,
		fleet:     cfg.Fleet,
		health:    cfg.Health,
		predictor: cfg.Predictor,
		optimizer: cfg.Optimizer,
		publisher: cfg.Publisher,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *Monitor) Start() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	m.wg.Add(1)
	go m.run()

	logger.Infof("Monitoring started, interval %s", m.interval)
	return nil
}

// Stop cancels the scheduler and drains the fleet's deferred
// transitions. Safe to call more than once.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	if !m.running {
		m.runMu.Unlock()
		return
	}
	m.running = false
	m.runMu.Unlock()

	m.cancel()
	m.wg.Wait()

	if m.fleet != nil {
		m.fleet.Stop()
	}

	logger.Info("Monitoring stopped")
}

func (m *Monitor) IsRunning() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.running
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Run immediately on start
	m.runTick()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.runTick()
		}
	}
}

// runTick executes the five pipeline stages sequentially. The tick is
// the blast-radius boundary: a failing stage logs and the loop proceeds
// to the next stage or tick.
func (m *Monitor) runTick() {
	ctx, cancel := context.WithTimeout(m.ctx, m.interval)
	defer cancel()

	var sample models.ScalingMetrics
	sampled := false

	m.stage("sample", func() {
		s, err := m.sampler.Sample(ctx)
		if err != nil {
			logger.Errorf("Metric sampling failed: %v", err)
			if m.publisher != nil {
				m.publisher.Error("Metric sampling failed", err)
			}
			return
		}
		sample = s
		sampled = true

		m.stateMu.Lock()
		copied := s
		m.latestMetrics = &copied
		m.stateMu.Unlock()
	})

	if sampled {
		m.stage("evaluate", func() {
			for _, fired := range m.evaluator.Evaluate(time.Now(), &sample) {
				if m.publisher != nil {
					m.publisher.PolicyFired(fired)
				}
				m.actuator.Execute(ctx, fired.ID, fired.Actions)
			}
		})
	}

	m.stage("health", func() {
		m.health.RunChecks(ctx)
	})

	m.stage("predict", func() {
		m.predictor.Refresh(ctx)
	})

	m.stage("optimize", func() {
		recs := m.optimizer.Analyze(ctx)
		m.stateMu.Lock()
		m.recommendations = recs
		m.stateMu.Unlock()
	})
}

func (m *Monitor) stage(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Stage %s panicked: %v", name, r)
			if m.publisher != nil {
				m.publisher.Error("Stage "+name+" panicked", fmt.Errorf("%v", r))
			}
		}
	}()
	fn()
}

// AddPolicy registers a new scaling policy; malformed definitions are
// rejected.
func (m *Monitor) AddPolicy(p *models.ScalingPolicy) error {
	return m.store.Add(p)
}

func (m *Monitor) RemovePolicy(id string) error {
	return m.store.Remove(id)
}

func (m *Monitor) EnablePolicy(id string) error {
	return m.store.SetEnabled(id, true)
}

func (m *Monitor) DisablePolicy(id string) error {
	return m.store.SetEnabled(id, false)
}

func (m *Monitor) GetPolicy(id string) (*models.ScalingPolicy, error) {
	return m.store.Get(id)
}

// ListPolicies returns policies in evaluation order.
func (m *Monitor) ListPolicies() []*models.ScalingPolicy {
	return m.store.List()
}

// RegisterDatabaseCluster records a pass-through database cluster
// configuration; no scheduling behavior is attached.
func (m *Monitor) RegisterDatabaseCluster(c models.DatabaseCluster) models.DatabaseCluster {
	if c.ID == "" {
		c.ID = models.NewUUID()
	}
	c.RegisteredAt = time.Now()

	m.stateMu.Lock()
	m.dbClusters = append(m.dbClusters, c)
	m.stateMu.Unlock()

	logger.Infof("Database cluster registered: %s", c.Name)
	return c
}

func (m *Monitor) RegisterCacheStrategy(s models.CacheStrategy) models.CacheStrategy {
	if s.ID == "" {
		s.ID = models.NewUUID()
	}
	s.RegisteredAt = time.Now()

	m.stateMu.Lock()
	m.cacheStrategies = append(m.cacheStrategies, s)
	m.stateMu.Unlock()

	logger.Infof("Cache strategy registered: %s", s.Name)
	return s
}

func (m *Monitor) RegisterDisasterRecoveryPlan(p models.DisasterRecoveryPlan) models.DisasterRecoveryPlan {
	if p.ID == "" {
		p.ID = models.NewUUID()
	}
	p.RegisteredAt = time.Now()

	m.stateMu.Lock()
	m.drPlans = append(m.drPlans, p)
	m.stateMu.Unlock()

	logger.Infof("Disaster recovery plan registered: %s", p.Name)
	return p
}
