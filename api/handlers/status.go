package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/internal/monitor"
)

const (
	defaultHistoryLimit = 60
	maxHistoryLimit     = 1000
)

type StatusHandler struct {
	monitor *monitor.Monitor
	history *metrics.History
}

func NewStatusHandler(m *monitor.Monitor, h *metrics.History) *StatusHandler {
	return &StatusHandler{monitor: m, history: h}
}

// Status godoc
// @Summary Consolidated status snapshot
// @Description Fleet instances, aggregate health, policies with cooldown state, latest metrics, predictions and recommendations
// @Tags Status
// @Produce json
// @Success 200 {object} monitor.Status
// @Router /api/v1/status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Status())
}

// LatestMetrics godoc
// @Summary Most recent metrics sample
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.ScalingMetrics
// @Failure 404 {object} map[string]string "No samples collected yet"
// @Router /api/v1/metrics/latest [get]
func (h *StatusHandler) LatestMetrics(c *gin.Context) {
	entry, ok := h.history.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no metrics collected yet"})
		return
	}
	c.JSON(http.StatusOK, entry.Metrics)
}

// MetricsHistory godoc
// @Summary Retained metrics history
// @Description Most recent samples, oldest first. Limit defaults to 60, capped at 1000.
// @Tags Metrics
// @Produce json
// @Param limit query int false "Maximum samples to return"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/metrics/history [get]
func (h *StatusHandler) MetricsHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries := h.history.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"samples": entries,
		"count":   len(entries),
	})
}

// MetricsAverage godoc
// @Summary Windowed metrics average
// @Description Average of all samples within the trailing window (e.g. 5m, 1h)
// @Tags Metrics
// @Produce json
// @Param window query string false "Trailing window duration" default(5m)
// @Success 200 {object} models.ScalingMetrics
// @Failure 404 {object} map[string]string "No samples in window"
// @Router /api/v1/metrics/average [get]
func (h *StatusHandler) MetricsAverage(c *gin.Context) {
	window := 5 * time.Minute
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive duration"})
			return
		}
		window = parsed
	}

	avg, err := h.history.Average(window)
	if err != nil {
		if errors.Is(err, metrics.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no samples in window"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute average"})
		return
	}

	c.JSON(http.StatusOK, avg)
}
