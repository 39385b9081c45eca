package policy

import (
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Evaluator decides which policies fire for a metrics sample. Trigger
// sustain durations are honored as true trailing-window requirements:
// the whole trigger set must hold continuously for the policy's longest
// Sustain before it may fire.
type Evaluator struct {
	store     *Store
	sustained *SustainedTracker
	lastFired map[string]time.Time
	mu        sync.Mutex
}

func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{
		store:     store,
		sustained: NewSustainedTracker(),
		lastFired: make(map[string]time.Time),
	}
}

// Evaluate returns the policies that fire for the sample, in evaluation
// order (ascending Priority). A fired policy's cooldown clock is set
// before the caller executes any action, so a slow action cannot cause
// re-entrant firing.
func (e *Evaluator) Evaluate(now time.Time, sample *models.ScalingMetrics) []*models.ScalingPolicy {
	var fired []*models.ScalingPolicy

	for _, p := range e.store.List() {
		holding := p.Enabled && allTriggersHold(p, sample)

		// Observe before any gating so the breach window keeps
		// advancing across cooldown-suppressed ticks.
		sustainedFor := e.sustained.Observe(p.ID, holding, now)

		if !holding {
			continue
		}

		if remaining := e.cooldownRemaining(p.ID, p.Cooldown, now); remaining > 0 {
			logger.WithPolicy(p.ID).Debugf("In cooldown for %s, skipping", remaining)
			continue
		}

		if required := p.MaxSustain(); required > 0 && sustainedFor < required {
			logger.WithPolicy(p.ID).Debugf(
				"Breach sustained %s of required %s, not firing", sustainedFor, required)
			continue
		}

		e.recordFired(p.ID, now)
		e.sustained.Reset(p.ID)
		fired = append(fired, p)

		logger.WithPolicy(p.ID).Infof("Policy fired: %s", p.Name)
	}

	return fired
}

func allTriggersHold(p *models.ScalingPolicy, sample *models.ScalingMetrics) bool {
	for _, t := range p.Triggers {
		if !t.Holds(sample) {
			return false
		}
	}
	return true
}

func (e *Evaluator) cooldownRemaining(policyID string, cooldown time.Duration, now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	last, exists := e.lastFired[policyID]
	if !exists {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

func (e *Evaluator) recordFired(policyID string, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastFired[policyID] = now
}

// CooldownRemaining reports how long policyID stays suppressed, for the
// status API.
func (e *Evaluator) CooldownRemaining(policyID string) time.Duration {
	p, err := e.store.Get(policyID)
	if err != nil {
		return 0
	}
	return e.cooldownRemaining(policyID, p.Cooldown, time.Now())
}

// ResetCooldown clears the cooldown clock for a policy.
func (e *Evaluator) ResetCooldown(policyID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.lastFired, policyID)
}
