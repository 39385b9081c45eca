package actuator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/internal/fleet"
	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/notify"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

var (
	ErrFleetAtMax    = errors.New("fleet already at max instances")
	ErrFleetAtMin    = errors.New("fleet already at min instances")
	ErrUnknownAction = errors.New("unknown action type")
)

const (
	scaleUpMultiplier   = 1.5
	scaleUpCeiling      = 100
	scaleDownMultiplier = 0.8
	scaleDownFloor      = 10
)

// ProvisionTemplate describes how scale_out stamps new instances.
type ProvisionTemplate struct {
	Type         models.InstanceType
	Region       string
	Zone         string
	EndpointBase string
}

// Actuator executes a fired policy's action list against the fleet.
// Actions run in ascending priority order; one failing action is logged
// with its context and never blocks the rest of the list.
type Actuator struct {
	fleet     *fleet.Manager
	notifier  notify.Notifier
	publisher *events.Publisher
	template  ProvisionTemplate
}

type Config struct {
	Fleet     *fleet.Manager
	Notifier  notify.Notifier
	Publisher *events.Publisher
	Template  ProvisionTemplate
}

func New(cfg Config) *Actuator {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewLogNotifier()
	}
	if cfg.Template.Type == "" {
		cfg.Template.Type = models.InstanceTypeAPI
	}
	return &Actuator{
		fleet:     cfg.Fleet,
		notifier:  cfg.Notifier,
		publisher: cfg.Publisher,
		template:  cfg.Template,
	}
}

// Execute runs the action list for one fired policy.
func (a *Actuator) Execute(ctx context.Context, policyID string, actions []models.ScalingAction) {
	ordered := make([]models.ScalingAction, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, action := range ordered {
		if err := a.executeOne(ctx, policyID, action); err != nil {
			logger.WithPolicy(policyID).WithField("action", action.Type).
				Errorf("Action failed: %v", err)
			if a.publisher != nil {
				a.publisher.ActionFailed(policyID, action, err)
			}
			continue
		}
		if a.publisher != nil {
			a.publisher.ActionExecuted(policyID, action)
		}
	}
}

func (a *Actuator) executeOne(ctx context.Context, policyID string, action models.ScalingAction) (err error) {
	// Contain panics from any single action to that action.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()

	switch action.Type {
	case models.ActionScaleUp:
		adjusted := a.fleet.ScaleCapacity(scaleUpMultiplier, scaleDownFloor, scaleUpCeiling)
		logger.WithPolicy(policyID).Infof("Scaled up capacity on %d instances", adjusted)
		return nil

	case models.ActionScaleDown:
		adjusted := a.fleet.ScaleCapacity(scaleDownMultiplier, scaleDownFloor, scaleUpCeiling)
		logger.WithPolicy(policyID).Infof("Scaled down capacity on %d instances", adjusted)
		return nil

	case models.ActionScaleOut:
		increment := intParam(action.Parameters, "increment", 1)
		max := intParam(action.Parameters, "max_instances", 20)
		return a.ScaleOut(increment, max)

	case models.ActionScaleIn:
		decrement := intParam(action.Parameters, "decrement", 1)
		min := intParam(action.Parameters, "min_instances", 2)
		return a.ScaleIn(decrement, min)

	case models.ActionFailover:
		return a.failover(ctx, action.Parameters)

	case models.ActionAlert:
		return a.alert(ctx, action.Parameters)
	}

	return fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
}

// ScaleOut adds up to increment instances, never growing past max. New
// instances start in `starting` and promote asynchronously; the caller
// does not wait.
func (a *Actuator) ScaleOut(increment, max int) error {
	size := a.fleet.Size()
	if size >= max {
		return fmt.Errorf("%w: %d >= %d", ErrFleetAtMax, size, max)
	}

	count := increment
	if size+count > max {
		count = max - size
	}

	for i := 0; i < count; i++ {
		instance := models.NewInstance(a.template.Type, a.template.Region, a.template.Zone, "")
		if a.template.EndpointBase != "" {
			instance.Endpoint = fmt.Sprintf("%s/%s", a.template.EndpointBase, instance.ID)
		}
		a.fleet.AddStarting(instance)
	}

	logger.Infof("Scale out: provisioning %d instances (fleet %d -> %d)", count, size, size+count)
	return nil
}

// ScaleIn drains the decrement lowest-loaded instances, never shrinking
// below min. Removal completes asynchronously after the drain delay.
func (a *Actuator) ScaleIn(decrement, min int) error {
	size := a.fleet.Size()
	if size <= min {
		return fmt.Errorf("%w: %d <= %d", ErrFleetAtMin, size, min)
	}

	count := decrement
	if size-count < min {
		count = size - min
	}

	victims := a.fleet.LowestLoad(count)
	for _, id := range victims {
		if err := a.fleet.BeginDrain(id); err != nil {
			logger.WithInstance(id).Warnf("Drain failed: %v", err)
		}
	}

	logger.Infof("Scale in: draining %d instances (fleet %d -> %d)", len(victims), size, size-len(victims))
	return nil
}

// failover is alert-and-log only; traffic rerouting and replica
// promotion belong to external collaborators.
func (a *Actuator) failover(ctx context.Context, params map[string]interface{}) error {
	source := stringParam(params, "source_region", "unknown")
	target := stringParam(params, "target_region", "unknown")

	logger.WithFields(map[string]interface{}{
		"source_region": source,
		"target_region": target,
	}).Error("Failover initiated")

	alert := notify.Alert{
		Severity:   models.SeverityCritical,
		Message:    fmt.Sprintf("Failover initiated: %s -> %s", source, target),
		Recipients: stringsParam(params, "recipients"),
		Timestamp:  time.Now(),
	}
	if err := a.notifier.Send(ctx, alert); err != nil {
		// Best effort: the failover record must not fail on a broken
		// notification channel.
		logger.Warnf("Failover alert delivery failed: %v", err)
	}
	return nil
}

func (a *Actuator) alert(ctx context.Context, params map[string]interface{}) error {
	severity := models.Severity(stringParam(params, "severity", string(models.SeverityWarning)))
	message := stringParam(params, "message", "scaling alert")

	alert := notify.Alert{
		Severity:   severity,
		Message:    message,
		Recipients: stringsParam(params, "recipients"),
		Timestamp:  time.Now(),
	}
	if err := a.notifier.Send(ctx, alert); err != nil {
		logger.Warnf("Alert delivery failed: %v", err)
	}
	return nil
}
