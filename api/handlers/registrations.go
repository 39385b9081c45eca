package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/monitor"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// RegistrationHandler accepts pass-through configuration records the
// monitor surfaces in its status snapshot.
type RegistrationHandler struct {
	monitor *monitor.Monitor
}

func NewRegistrationHandler(m *monitor.Monitor) *RegistrationHandler {
	return &RegistrationHandler{monitor: m}
}

type DatabaseClusterRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100" example:"orders-db"`
	Engine       string   `json:"engine" binding:"required" example:"postgres"`
	PrimaryNode  string   `json:"primary_node" binding:"required" example:"db-1.internal"`
	ReplicaNodes []string `json:"replica_nodes"`
	Region       string   `json:"region" binding:"required" example:"us-east-1"`
}

type CacheStrategyRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100" example:"edge-cache"`
	Layer        string `json:"layer" binding:"required" example:"cdn"`
	TTLSec       int    `json:"ttl_seconds" binding:"omitempty,min=0" example:"300"`
	EvictionMode string `json:"eviction_mode" binding:"omitempty,oneof=lru lfu ttl" example:"lru"`
}

type DisasterRecoveryPlanRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100" example:"regional-failover"`
	PrimaryRegion string `json:"primary_region" binding:"required" example:"us-east-1"`
	StandbyRegion string `json:"standby_region" binding:"required" example:"us-west-2"`
	RPOSec        int    `json:"rpo_seconds" binding:"omitempty,min=0" example:"60"`
	RTOSec        int    `json:"rto_seconds" binding:"omitempty,min=0" example:"300"`
}

// RegisterDatabaseCluster godoc
// @Summary Register a database cluster record
// @Tags Registrations
// @Accept json
// @Produce json
// @Param cluster body DatabaseClusterRequest true "Cluster definition"
// @Success 201 {object} models.DatabaseCluster
// @Failure 400 {object} map[string]string
// @Router /api/v1/registrations/database-clusters [post]
func (h *RegistrationHandler) RegisterDatabaseCluster(c *gin.Context) {
	var req DatabaseClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := h.monitor.RegisterDatabaseCluster(models.DatabaseCluster{
		Name:         req.Name,
		Engine:       req.Engine,
		PrimaryNode:  req.PrimaryNode,
		ReplicaNodes: req.ReplicaNodes,
		Region:       req.Region,
	})
	c.JSON(http.StatusCreated, record)
}

// RegisterCacheStrategy godoc
// @Summary Register a cache strategy record
// @Tags Registrations
// @Accept json
// @Produce json
// @Param strategy body CacheStrategyRequest true "Strategy definition"
// @Success 201 {object} models.CacheStrategy
// @Failure 400 {object} map[string]string
// @Router /api/v1/registrations/cache-strategies [post]
func (h *RegistrationHandler) RegisterCacheStrategy(c *gin.Context) {
	var req CacheStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := h.monitor.RegisterCacheStrategy(models.CacheStrategy{
		Name:         req.Name,
		Layer:        req.Layer,
		TTL:          time.Duration(req.TTLSec) * time.Second,
		EvictionMode: req.EvictionMode,
	})
	c.JSON(http.StatusCreated, record)
}

// RegisterDisasterRecoveryPlan godoc
// @Summary Register a disaster recovery plan record
// @Tags Registrations
// @Accept json
// @Produce json
// @Param plan body DisasterRecoveryPlanRequest true "Plan definition"
// @Success 201 {object} models.DisasterRecoveryPlan
// @Failure 400 {object} map[string]string
// @Router /api/v1/registrations/dr-plans [post]
func (h *RegistrationHandler) RegisterDisasterRecoveryPlan(c *gin.Context) {
	var req DisasterRecoveryPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := h.monitor.RegisterDisasterRecoveryPlan(models.DisasterRecoveryPlan{
		Name:          req.Name,
		PrimaryRegion: req.PrimaryRegion,
		StandbyRegion: req.StandbyRegion,
		RPO:           time.Duration(req.RPOSec) * time.Second,
		RTO:           time.Duration(req.RTOSec) * time.Second,
	})
	c.JSON(http.StatusCreated, record)
}
