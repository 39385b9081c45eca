package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/predictor"
)

const defaultPredictionLimit = 24

type PredictionHandler struct {
	runner *predictor.Runner
}

func NewPredictionHandler(r *predictor.Runner) *PredictionHandler {
	return &PredictionHandler{runner: r}
}

// Predictions godoc
// @Summary Capacity predictions
// @Description Near-term load predictions from the freshest registered model
// @Tags Predictions
// @Produce json
// @Param limit query int false "Maximum predictions to return"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/predictions [get]
func (h *PredictionHandler) Predictions(c *gin.Context) {
	limit := defaultPredictionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	predictions := h.runner.Predictions(limit)
	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// Models godoc
// @Summary Registered predictive models
// @Tags Predictions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/predictions/models [get]
func (h *PredictionHandler) Models(c *gin.Context) {
	models := h.runner.Models()
	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}
