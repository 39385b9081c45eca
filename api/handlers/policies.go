package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/monitor"
	"github.com/serviceops/fleet-autoscaler/internal/policy"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

type PolicyHandler struct {
	monitor *monitor.Monitor
}

func NewPolicyHandler(m *monitor.Monitor) *PolicyHandler {
	return &PolicyHandler{monitor: m}
}

type TriggerRequest struct {
	Metric     string  `json:"metric" binding:"required" example:"cpu_utilization"`
	Comparator string  `json:"comparator" binding:"required,oneof=gt lt eq gte lte" example:"gt"`
	Threshold  float64 `json:"threshold" example:"80"`
	SustainSec int     `json:"sustain_seconds" binding:"omitempty,min=0" example:"300"`
}

type ActionRequest struct {
	Type       string                 `json:"type" binding:"required" example:"scale_out"`
	Parameters map[string]interface{} `json:"parameters"`
	Priority   int                    `json:"priority" example:"1"`
}

type CreatePolicyRequest struct {
	ID          string           `json:"id" binding:"omitempty,max=100" example:"high-cpu-scale-out"`
	Name        string           `json:"name" binding:"required,min=1,max=100" example:"High CPU scale out"`
	Triggers    []TriggerRequest `json:"triggers" binding:"required,min=1,dive"`
	Actions     []ActionRequest  `json:"actions" binding:"required,min=1,dive"`
	CooldownSec int              `json:"cooldown_seconds" binding:"omitempty,min=0" example:"600"`
	Priority    int              `json:"priority" example:"1"`
	Enabled     *bool            `json:"enabled"`
}

func (r *CreatePolicyRequest) toPolicy() *models.ScalingPolicy {
	id := r.ID
	if id == "" {
		id = models.NewUUID()
	}

	triggers := make([]models.ScalingTrigger, len(r.Triggers))
	for i, t := range r.Triggers {
		triggers[i] = models.ScalingTrigger{
			Metric:     t.Metric,
			Comparator: models.Comparator(t.Comparator),
			Threshold:  t.Threshold,
			Sustain:    time.Duration(t.SustainSec) * time.Second,
		}
	}

	actions := make([]models.ScalingAction, len(r.Actions))
	for i, a := range r.Actions {
		actions[i] = models.ScalingAction{
			Type:       models.ActionType(a.Type),
			Parameters: a.Parameters,
			Priority:   a.Priority,
		}
	}

	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	return &models.ScalingPolicy{
		ID:       id,
		Name:     r.Name,
		Triggers: triggers,
		Actions:  actions,
		Cooldown: time.Duration(r.CooldownSec) * time.Second,
		Priority: r.Priority,
		Enabled:  enabled,
	}
}

// List godoc
// @Summary List scaling policies
// @Description Policies in evaluation order (ascending priority)
// @Tags Policies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/policies [get]
func (h *PolicyHandler) List(c *gin.Context) {
	policies := h.monitor.ListPolicies()
	c.JSON(http.StatusOK, gin.H{
		"policies": policies,
		"count":    len(policies),
	})
}

// Get godoc
// @Summary Get a scaling policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} models.ScalingPolicy
// @Failure 404 {object} map[string]string
// @Router /api/v1/policies/{id} [get]
func (h *PolicyHandler) Get(c *gin.Context) {
	p, err := h.monitor.GetPolicy(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create godoc
// @Summary Register a scaling policy
// @Tags Policies
// @Accept json
// @Produce json
// @Param policy body CreatePolicyRequest true "Policy definition"
// @Success 201 {object} models.ScalingPolicy
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/policies [post]
func (h *PolicyHandler) Create(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := req.toPolicy()
	if err := h.monitor.AddPolicy(p); err != nil {
		switch {
		case errors.Is(err, policy.ErrPolicyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "policy already exists"})
		case errors.Is(err, policy.ErrInvalidPolicy):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add policy"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Delete godoc
// @Summary Remove a scaling policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/policies/{id} [delete]
func (h *PolicyHandler) Delete(c *gin.Context) {
	if err := h.monitor.RemovePolicy(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enable godoc
// @Summary Enable a scaling policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/policies/{id}/enable [post]
func (h *PolicyHandler) Enable(c *gin.Context) {
	h.setEnabled(c, true)
}

// Disable godoc
// @Summary Disable a scaling policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/policies/{id}/disable [post]
func (h *PolicyHandler) Disable(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *PolicyHandler) setEnabled(c *gin.Context, enabled bool) {
	id := c.Param("id")

	var err error
	if enabled {
		err = h.monitor.EnablePolicy(id)
	} else {
		err = h.monitor.DisablePolicy(id)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "state": state})
}
