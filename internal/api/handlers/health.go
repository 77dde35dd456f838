package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtmetrics/marginflow/internal/storage"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store     *storage.Store
	logger    *logrus.Logger
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store *storage.Store, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// GetReady handles GET /ready; not ready until the database answers.
func (h *HealthHandler) GetReady(c *gin.Context) {
	if err := h.store.HealthCheck(); err != nil {
		h.logger.WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
