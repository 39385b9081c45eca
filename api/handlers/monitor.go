package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/monitor"
)

type MonitorHandler struct {
	monitor *monitor.Monitor
}

func NewMonitorHandler(m *monitor.Monitor) *MonitorHandler {
	return &MonitorHandler{monitor: m}
}

// Start godoc
// @Summary Start the control loop
// @Tags Monitor
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/monitor/start [post]
func (h *MonitorHandler) Start(c *gin.Context) {
	if err := h.monitor.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": true})
}

// Stop godoc
// @Summary Stop the control loop
// @Description Stops the scheduler and resolves all pending instance transitions
// @Tags Monitor
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/monitor/stop [post]
func (h *MonitorHandler) Stop(c *gin.Context) {
	h.monitor.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}
