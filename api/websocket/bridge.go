package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// EventBridge forwards control-loop events to websocket clients.
type EventBridge struct {
	hub    *Hub
	events <-chan *models.Event
	ctx    context.Context
	cancel context.CancelFunc
}

func NewEventBridge(hub *Hub, events <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:    hub,
		events: events,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.events:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

// StreamMessage is the wire format sent to websocket clients.
type StreamMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	wsType := mapEventType(event.Type)
	if wsType == "" {
		return
	}

	msg := StreamMessage{
		Type:      wsType,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		TraceID:   event.TraceID,
		Data:      event.Data,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastEvent(wsType, data)
}

func mapEventType(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeMetricsSampled:
		return "metrics"
	case models.EventTypePolicyFired:
		return "policy_fired"
	case models.EventTypeActionExecuted:
		return "scaling_event"
	case models.EventTypeActionFailed:
		return "scaling_failed"
	case models.EventTypeInstanceAdded, models.EventTypeInstanceRemoved,
		models.EventTypeInstanceQuarantined, models.EventTypeInstanceRecovered:
		return "instance_update"
	case models.EventTypePrediction:
		return "prediction"
	case models.EventTypeAlert:
		return "alert"
	case models.EventTypeError:
		return "error"
	default:
		return ""
	}
}
