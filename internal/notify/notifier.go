package notify

import (
	"context"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/resilience"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Alert is the payload handed to the external notification channel.
// Delivery is best effort; a failed send never propagates past the
// actuator.
type Alert struct {
	Severity   models.Severity `json:"severity"`
	Message    string          `json:"message"`
	Recipients []string        `json:"recipients,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Notifier dispatches alerts to an external channel.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the structured log. It is the default
// channel when no external integration is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	entry := logger.WithFields(map[string]interface{}{
		"severity":   alert.Severity,
		"recipients": alert.Recipients,
	})

	switch alert.Severity {
	case models.SeverityCritical:
		entry.Errorf("ALERT: %s", alert.Message)
	case models.SeverityWarning:
		entry.Warnf("ALERT: %s", alert.Message)
	default:
		entry.Infof("ALERT: %s", alert.Message)
	}
	return nil
}

// Resilient wraps a notifier with a circuit breaker so a failing
// channel cannot stall the control loop.
type Resilient struct {
	inner   Notifier
	breaker *resilience.CircuitBreaker
}

func NewResilient(inner Notifier, breaker *resilience.CircuitBreaker) *Resilient {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "notifier",
		})
	}
	return &Resilient{inner: inner, breaker: breaker}
}

func (r *Resilient) Send(ctx context.Context, alert Alert) error {
	return r.breaker.Execute(func() error {
		return r.inner.Send(ctx, alert)
	})
}
