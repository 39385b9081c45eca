package models

import "time"

type InstanceType string

const (
	InstanceTypeAPI          InstanceType = "api"
	InstanceTypeDatabase     InstanceType = "database"
	InstanceTypeCache        InstanceType = "cache"
	InstanceTypeStorage      InstanceType = "storage"
	InstanceTypeMLWorker     InstanceType = "ml_worker"
	InstanceTypeNotification InstanceType = "notification"
)

type InstanceStatus string

const (
	InstanceHealthy     InstanceStatus = "healthy"
	InstanceUnhealthy   InstanceStatus = "unhealthy"
	InstanceStarting    InstanceStatus = "starting"
	InstanceStopping    InstanceStatus = "stopping"
	InstanceMaintenance InstanceStatus = "maintenance"
)

// ServiceInstance is one managed fleet member. Status transitions are
// driven by the fleet manager (health checks) and the actuator
// (scale_out/scale_in); nothing else mutates instance records.
type ServiceInstance struct {
	ID              string            `json:"id"`
	Type            InstanceType      `json:"type"`
	Status          InstanceStatus    `json:"status"`
	Region          string            `json:"region"`
	Zone            string            `json:"zone"`
	Endpoint        string            `json:"endpoint"`
	Capacity        float64           `json:"capacity"`
	CurrentLoad     float64           `json:"current_load"`
	HealthScore     float64           `json:"health_score"`
	LastHealthCheck time.Time         `json:"last_health_check"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewInstance creates a starting instance with the defaults the actuator
// uses for scale_out provisioning.
func NewInstance(instanceType InstanceType, region, zone, endpoint string) *ServiceInstance {
	return &ServiceInstance{
		ID:          NewUUID(),
		Type:        instanceType,
		Status:      InstanceStarting,
		Region:      region,
		Zone:        zone,
		Endpoint:    endpoint,
		Capacity:    50,
		HealthScore: 100,
	}
}

// ServesTraffic reports whether the instance is in a traffic-serving state.
func (s *ServiceInstance) ServesTraffic() bool {
	return s.Status == InstanceHealthy
}

// ClampHealthScore forces HealthScore back into [0,100].
func (s *ServiceInstance) ClampHealthScore() {
	if s.HealthScore < 0 {
		s.HealthScore = 0
	}
	if s.HealthScore > 100 {
		s.HealthScore = 100
	}
}
