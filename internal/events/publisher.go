package events

import (
	"fmt"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Publisher provides typed helpers over the raw bus.
type Publisher struct {
	bus     *Bus
	traceID string
}

func NewPublisher(bus *Bus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{bus: p.bus, traceID: traceID}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) MetricsSampled(metrics *models.ScalingMetrics) {
	p.publish(models.NewEvent(models.EventTypeMetricsSampled, "Metrics sampled").
		WithData(metrics))
}

func (p *Publisher) PolicyFired(policy *models.ScalingPolicy) {
	p.publish(models.NewEvent(models.EventTypePolicyFired, "Policy fired: "+policy.Name).
		WithData(policy))
}

func (p *Publisher) ActionExecuted(policyID string, action models.ScalingAction) {
	p.publish(models.NewEvent(models.EventTypeActionExecuted, "Action executed: "+string(action.Type)).
		WithData(map[string]interface{}{
			"policy_id": policyID,
			"action":    action,
		}))
}

func (p *Publisher) ActionFailed(policyID string, action models.ScalingAction, err error) {
	p.publish(models.NewEvent(models.EventTypeActionFailed, "Action failed: "+string(action.Type)).
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"policy_id": policyID,
			"action":    action,
			"error":     err.Error(),
		}))
}

func (p *Publisher) InstanceAdded(instance *models.ServiceInstance) {
	p.publish(models.NewEvent(models.EventTypeInstanceAdded, "Instance added").
		WithData(instance))
}

func (p *Publisher) InstanceRemoved(instanceID, reason string) {
	p.publish(models.NewEvent(models.EventTypeInstanceRemoved, "Instance removed: "+reason).
		WithData(map[string]string{"instance_id": instanceID, "reason": reason}))
}

func (p *Publisher) InstanceQuarantined(instance *models.ServiceInstance) {
	p.publish(models.NewEvent(models.EventTypeInstanceQuarantined,
		fmt.Sprintf("Instance quarantined (health score %.0f)", instance.HealthScore)).
		WithSeverity(models.SeverityWarning).
		WithData(instance))
}

func (p *Publisher) InstanceRecovered(instance *models.ServiceInstance) {
	p.publish(models.NewEvent(models.EventTypeInstanceRecovered, "Instance recovered from quarantine").
		WithData(instance))
}

func (p *Publisher) PredictionGenerated(model *models.PredictiveScalingModel) {
	p.publish(models.NewEvent(models.EventTypePrediction,
		fmt.Sprintf("Predictions refreshed for model %s", model.ID)).
		WithData(model))
}

func (p *Publisher) Alert(severity models.Severity, message string) {
	p.publish(models.NewEvent(models.EventTypeAlert, message).
		WithSeverity(severity))
}

func (p *Publisher) Error(message string, err error) {
	p.publish(models.NewEvent(models.EventTypeError, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]string{"error": err.Error()}))
}
