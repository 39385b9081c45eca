package fleet

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Prober answers whether one instance is healthy. The bool is the probe
// verdict (timeouts and non-success statuses are a false verdict, not an
// error); a non-nil error means the probe itself broke and the instance
// is treated as unhealthy with its score zeroed.
type Prober interface {
	Probe(ctx context.Context, instance *models.ServiceInstance) (bool, error)
}

// ProberFunc adapts a plain function to the Prober interface.
type ProberFunc func(ctx context.Context, instance *models.ServiceInstance) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
	return f(ctx, instance)
}

// HTTPProber probes GET <endpoint>/health expecting a 2xx within the
// timeout.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, instance *models.ServiceInstance) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := instance.Endpoint + "/health"
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// Unreachable or timed out: an unhealthy verdict, not a
		// checker failure.
		return false, nil
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// HealthChecker runs the per-tick probe pass: all healthy/unhealthy
// instances are probed concurrently under a bounded in-flight limit, and
// quarantined instances get a one-shot recovery probe after the
// configured delay.
type HealthChecker struct {
	manager     *Manager
	prober      Prober
	maxInFlight int
	timeout     time.Duration
}

type HealthCheckerConfig struct {
	Prober      Prober
	MaxInFlight int
	Timeout     time.Duration
}

func NewHealthChecker(manager *Manager, cfg HealthCheckerConfig) *HealthChecker {
	if cfg.Prober == nil {
		cfg.Prober = NewHTTPProber(cfg.Timeout)
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &HealthChecker{
		manager:     manager,
		prober:      cfg.Prober,
		maxInFlight: cfg.MaxInFlight,
		timeout:     cfg.Timeout,
	}
}

// RunChecks probes every checkable instance once. Probe errors are
// recorded as unhealthy results; nothing here aborts the tick.
func (hc *HealthChecker) RunChecks(ctx context.Context) {
	instances := hc.manager.Snapshot()

	sem := make(chan struct{}, hc.maxInFlight)
	var wg sync.WaitGroup

	for i := range instances {
		instance := instances[i]
		if !checkable(instance.Status) {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			hc.checkOne(ctx, &instance)
		}()
	}

	wg.Wait()
}

func checkable(status models.InstanceStatus) bool {
	// Starting/stopping instances are owned by their provisioning
	// timers; quarantined ones by the recovery probe.
	return status == models.InstanceHealthy || status == models.InstanceUnhealthy
}

func (hc *HealthChecker) checkOne(ctx context.Context, instance *models.ServiceInstance) {
	now := time.Now()

	healthy, err := hc.probe(ctx, instance)
	if err != nil {
		logger.WithInstance(instance.ID).Errorf("Health check error: %v", err)
	}
	if healthy && err == nil {
		hc.manager.RecordHealthy(instance.ID, now)
		return
	}

	quarantined := hc.manager.RecordUnhealthy(instance.ID, now, err != nil)
	if quarantined {
		hc.scheduleRecovery(instance.ID)
	}
}

func (hc *HealthChecker) probe(ctx context.Context, instance *models.ServiceInstance) (healthy bool, err error) {
	// A panicking prober is a checker error, never a crashed manager.
	defer func() {
		if r := recover(); r != nil {
			healthy = false
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	return hc.prober.Probe(probeCtx, instance)
}

// scheduleRecovery arms the one-shot recovery probe for a quarantined
// instance: success returns it to service at score 50, failure removes
// it from the fleet permanently.
func (hc *HealthChecker) scheduleRecovery(id string) {
	hc.manager.ScheduleRecovery(func() {
		instance, err := hc.manager.Get(id)
		if err != nil || instance.Status != models.InstanceMaintenance {
			return
		}

		healthy, probeErr := hc.probe(context.Background(), &instance)
		if healthy && probeErr == nil {
			hc.manager.Recover(id)
			return
		}

		logger.WithInstance(id).Warn("Recovery probe failed, removing instance permanently")
		hc.manager.Remove(id, "failed recovery probe")
	})
}
