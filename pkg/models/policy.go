package models

import "time"

// Comparator is the relation a trigger applies between a metric value
// and its threshold.
type Comparator string

const (
	ComparatorGT  Comparator = "gt"
	ComparatorLT  Comparator = "lt"
	ComparatorEQ  Comparator = "eq"
	ComparatorGTE Comparator = "gte"
	ComparatorLTE Comparator = "lte"
)

// Valid reports whether the comparator is one of the supported relations.
func (c Comparator) Valid() bool {
	switch c {
	case ComparatorGT, ComparatorLT, ComparatorEQ, ComparatorGTE, ComparatorLTE:
		return true
	}
	return false
}

// Compare applies the comparator to value against threshold.
func (c Comparator) Compare(value, threshold float64) bool {
	switch c {
	case ComparatorGT:
		return value > threshold
	case ComparatorLT:
		return value < threshold
	case ComparatorEQ:
		return value == threshold
	case ComparatorGTE:
		return value >= threshold
	case ComparatorLTE:
		return value <= threshold
	}
	return false
}

// ScalingTrigger is one metric condition within a policy. Sustain is how
// long the condition must hold continuously before the policy may fire;
// zero means an instantaneous check.
type ScalingTrigger struct {
	Metric     string        `json:"metric"`
	Comparator Comparator    `json:"comparator"`
	Threshold  float64       `json:"threshold"`
	Sustain    time.Duration `json:"sustain"`
}

// Holds evaluates the trigger against a single metrics sample.
func (t ScalingTrigger) Holds(m *ScalingMetrics) bool {
	value, ok := m.Field(t.Metric)
	if !ok {
		return false
	}
	return t.Comparator.Compare(value, t.Threshold)
}

// ActionType tags a scaling action.
type ActionType string

const (
	ActionScaleUp   ActionType = "scale_up"
	ActionScaleDown ActionType = "scale_down"
	ActionScaleOut  ActionType = "scale_out"
	ActionScaleIn   ActionType = "scale_in"
	ActionFailover  ActionType = "failover"
	ActionAlert     ActionType = "alert"
)

// Valid reports whether the action type is supported.
func (a ActionType) Valid() bool {
	switch a {
	case ActionScaleUp, ActionScaleDown, ActionScaleOut, ActionScaleIn,
		ActionFailover, ActionAlert:
		return true
	}
	return false
}

// ScalingAction is one step of a policy's response. Priority orders
// execution within a single policy's action list (ascending).
type ScalingAction struct {
	Type       ActionType             `json:"type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Priority   int                    `json:"priority"`
}

// ScalingPolicy maps a set of trigger conditions (logical AND) to an
// ordered list of actions. Lower Priority values are evaluated first
// when several policies are eligible in the same tick.
type ScalingPolicy struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Triggers []ScalingTrigger `json:"triggers"`
	Actions  []ScalingAction  `json:"actions"`
	Cooldown time.Duration    `json:"cooldown"`
	Enabled  bool             `json:"enabled"`
	Priority int              `json:"priority"`
}

// MaxSustain returns the longest Sustain requirement across the policy's
// triggers. The whole trigger set must hold continuously for this long.
func (p *ScalingPolicy) MaxSustain() time.Duration {
	var max time.Duration
	for _, t := range p.Triggers {
		if t.Sustain > max {
			max = t.Sustain
		}
	}
	return max
}
