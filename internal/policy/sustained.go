package policy

import (
	"sync"
	"time"
)

// SustainedTracker records, per policy, when its full trigger set first
// became continuously true. The moment any trigger stops holding the
// breach window resets.
type SustainedTracker struct {
	breachStart map[string]time.Time
	mu          sync.Mutex
}

func NewSustainedTracker() *SustainedTracker {
	return &SustainedTracker{
		breachStart: make(map[string]time.Time),
	}
}

// Observe updates the breach window for policyID given whether its
// trigger set holds at now, and returns how long the breach has been
// continuously sustained (zero if not breaching).
func (t *SustainedTracker) Observe(policyID string, holding bool, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !holding {
		delete(t.breachStart, policyID)
		return 0
	}

	start, exists := t.breachStart[policyID]
	if !exists {
		t.breachStart[policyID] = now
		return 0
	}
	return now.Sub(start)
}

func (t *SustainedTracker) Reset(policyID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.breachStart, policyID)
}
