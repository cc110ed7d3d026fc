package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services"
	"gorm.io/gorm"
)

// HealthHandler provides the health check and metrics endpoints.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
	hub   *services.SSEHub
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue, hub *services.SSEHub) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, hub: hub}
}

func (h *HealthHandler) queueMode() string {
	if h.queue != nil && h.queue.IsAsync() {
		return "async (Redis)"
	}
	return "sync"
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := 200

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}
	if overall != "healthy" {
		status = 503
	}

	sseClients := 0
	if h.hub != nil {
		sseClients = h.hub.ClientCount()
	}

	var aiFailures int64
	h.db.Model(&models.AIUsageLog{}).
		Where("success = ? AND created_at >= ?", false, time.Now().Add(-time.Hour)).
		Count(&aiFailures)

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "change",
		"components": gin.H{
			"database":       dbStatus,
			"queue_mode":     h.queueMode(),
			"sse_clients":    sseClients,
			"ai_failures_1h": aiFailures,
		},
	})
}
