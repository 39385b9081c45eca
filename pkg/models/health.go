package models

// HealthStatus is the aggregate fleet health classification exposed by
// the status API.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// AggregateHealth classifies a fleet: healthy above 80% healthy members,
// degraded above 50%, unhealthy below, unknown for an empty fleet.
func AggregateHealth(healthy, total int) HealthStatus {
	if total == 0 {
		return HealthStatusUnknown
	}
	ratio := float64(healthy) / float64(total)
	switch {
	case ratio > 0.8:
		return HealthStatusHealthy
	case ratio > 0.5:
		return HealthStatusDegraded
	default:
		return HealthStatusUnhealthy
	}
}
