package config

import (
	"errors"
	"fmt"
)

// Validate rejects configurations the control loop cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval must be positive"))
	}
	if c.Metrics.Retention <= 0 {
		errs = append(errs, errors.New("metrics.retention must be positive"))
	}
	if c.Health.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("health.probe_timeout must be positive"))
	}
	if c.Health.MaxInFlight <= 0 {
		errs = append(errs, errors.New("health.max_in_flight must be positive"))
	}
	if c.Fleet.MinInstances < 0 {
		errs = append(errs, errors.New("fleet.min_instances must not be negative"))
	}
	if c.Fleet.MaxInstances <= 0 {
		errs = append(errs, errors.New("fleet.max_instances must be positive"))
	}
	if c.Fleet.MinInstances > c.Fleet.MaxInstances {
		errs = append(errs, fmt.Errorf(
			"fleet.min_instances (%d) exceeds fleet.max_instances (%d)",
			c.Fleet.MinInstances, c.Fleet.MaxInstances))
	}
	if c.Predictor.TargetUtilization <= 0 || c.Predictor.TargetUtilization > 100 {
		errs = append(errs, errors.New("predictor.target_utilization must be in (0, 100]"))
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be a valid port"))
	}
	if c.Database.Enabled && c.Database.Host == "" {
		errs = append(errs, errors.New("database.host required when database.enabled"))
	}

	return errors.Join(errs...)
}
