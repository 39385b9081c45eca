package models

import "time"

// Pass-through configuration records. The monitor stores and surfaces
// these in its status snapshot; no scheduling behavior is attached.

type DatabaseCluster struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Engine       string    `json:"engine"`
	PrimaryNode  string    `json:"primary_node"`
	ReplicaNodes []string  `json:"replica_nodes,omitempty"`
	Region       string    `json:"region"`
	RegisteredAt time.Time `json:"registered_at"`
}

type CacheStrategy struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Layer        string        `json:"layer"`
	TTL          time.Duration `json:"ttl"`
	EvictionMode string        `json:"eviction_mode"`
	RegisteredAt time.Time     `json:"registered_at"`
}

type DisasterRecoveryPlan struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	PrimaryRegion string        `json:"primary_region"`
	StandbyRegion string        `json:"standby_region"`
	RPO           time.Duration `json:"rpo"`
	RTO           time.Duration `json:"rto"`
	RegisteredAt  time.Time     `json:"registered_at"`
}
