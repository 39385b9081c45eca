package models

import "time"

type EventType string

const (
	EventTypeMetricsSampled      EventType = "metrics_sampled"
	EventTypePolicyFired         EventType = "policy_fired"
	EventTypeActionExecuted      EventType = "action_executed"
	EventTypeActionFailed        EventType = "action_failed"
	EventTypeInstanceAdded       EventType = "instance_added"
	EventTypeInstanceRemoved     EventType = "instance_removed"
	EventTypeInstanceQuarantined EventType = "instance_quarantined"
	EventTypeInstanceRecovered   EventType = "instance_recovered"
	EventTypePrediction          EventType = "prediction_generated"
	EventTypeAlert               EventType = "alert"
	EventTypeError               EventType = "error"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is the unit published on the internal event bus and streamed to
// websocket subscribers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Severity  Severity    `json:"severity"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewEvent(eventType EventType, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func (e *Event) WithSeverity(severity Severity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}
