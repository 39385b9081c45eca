package policy

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

var (
	ErrPolicyNotFound = errors.New("policy not found")
	ErrPolicyExists   = errors.New("policy already exists")
	ErrInvalidPolicy  = errors.New("invalid policy")
)

// Store holds the named scaling policies. Malformed definitions are
// rejected at add/update time, never silently accepted.
type Store struct {
	policies map[string]*models.ScalingPolicy
	order    map[string]int
	nextSeq  int
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		policies: make(map[string]*models.ScalingPolicy),
		order:    make(map[string]int),
	}
}

// NewStoreWithDefaults returns a store pre-loaded with the built-in
// policies.
func NewStoreWithDefaults() *Store {
	s := NewStore()
	for _, p := range DefaultPolicies() {
		// Defaults are well-formed by construction.
		_ = s.Add(p)
	}
	return s
}

func Validate(p *models.ScalingPolicy) error {
	if p == nil {
		return fmt.Errorf("%w: nil policy", ErrInvalidPolicy)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPolicy)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPolicy)
	}
	if len(p.Triggers) == 0 {
		return fmt.Errorf("%w: policy %s has no triggers", ErrInvalidPolicy, p.ID)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: policy %s has no actions", ErrInvalidPolicy, p.ID)
	}
	if p.Cooldown < 0 {
		return fmt.Errorf("%w: policy %s has negative cooldown", ErrInvalidPolicy, p.ID)
	}
	for _, t := range p.Triggers {
		if !models.KnownMetric(t.Metric) {
			return fmt.Errorf("%w: policy %s references unknown metric %q", ErrInvalidPolicy, p.ID, t.Metric)
		}
		if !t.Comparator.Valid() {
			return fmt.Errorf("%w: policy %s has unknown comparator %q", ErrInvalidPolicy, p.ID, t.Comparator)
		}
		if t.Sustain < 0 {
			return fmt.Errorf("%w: policy %s has negative sustain duration", ErrInvalidPolicy, p.ID)
		}
	}
	for _, a := range p.Actions {
		if !a.Type.Valid() {
			return fmt.Errorf("%w: policy %s has unknown action type %q", ErrInvalidPolicy, p.ID, a.Type)
		}
	}
	return nil
}

func (s *Store) Add(p *models.ScalingPolicy) error {
	if err := Validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrPolicyExists, p.ID)
	}

	copied := *p
	s.policies[p.ID] = &copied
	s.order[p.ID] = s.nextSeq
	s.nextSeq++
	return nil
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[id]; !exists {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, id)
	}
	delete(s.policies, id)
	delete(s.order, id)
	return nil
}

func (s *Store) Get(id string) (*models.ScalingPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.policies[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, id)
	}
	copied := *p
	return &copied, nil
}

func (s *Store) Update(p *models.ScalingPolicy) error {
	if err := Validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, p.ID)
	}
	copied := *p
	s.policies[p.ID] = &copied
	return nil
}

func (s *Store) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.policies[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, id)
	}
	p.Enabled = enabled
	return nil
}

// List returns policy copies sorted by ascending Priority, insertion
// order breaking ties. This is the evaluation order.
func (s *Store) List() []*models.ScalingPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ScalingPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		copied := *p
		out = append(out, &copied)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies)
}
