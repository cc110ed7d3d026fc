package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/models"
)

var startTime = time.Now()

// Metrics returns Prometheus-compatible text format metrics.
// GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	// -- Runtime metrics --
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "change_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "change_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "change_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "change_memory_sys_bytes", "Total memory obtained from OS in bytes", float64(m.Sys))
	writeGauge(&b, "change_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	// -- Database metrics --
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "change_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "change_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
		writeGauge(&b, "change_db_idle_connections", "Number of idle DB connections", float64(stats.Idle))
	}

	// -- SSE metrics --
	if h.hub != nil {
		writeGauge(&b, "change_sse_active_clients", "Number of active SSE connections", float64(h.hub.ClientCount()))
	}

	// -- Queue metrics --
	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "change_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", queueAsync)

	// -- Domain metrics --
	var projects, activeProjects, stakeholders, messages, insights int64
	h.db.Model(&models.Project{}).Count(&projects)
	h.db.Model(&models.Project{}).Where("status = ?", models.ProjectStatusActive).Count(&activeProjects)
	h.db.Model(&models.GlobalStakeholder{}).Count(&stakeholders)
	h.db.Model(&models.ChatMessage{}).Count(&messages)
	h.db.Model(&models.ChatInsight{}).Count(&insights)

	writeGauge(&b, "change_projects_total", "Total number of projects", float64(projects))
	writeGauge(&b, "change_projects_active", "Number of active projects", float64(activeProjects))
	writeGauge(&b, "change_stakeholders_total", "Total number of directory stakeholders", float64(stakeholders))
	writeGauge(&b, "change_chat_messages_total", "Total number of stored chat messages", float64(messages))
	writeGauge(&b, "change_chat_insights_total", "Total number of extracted insights", float64(insights))

	// AI Usage (last 24h)
	since24h := time.Now().Add(-24 * time.Hour)
	var aiCalls24h, aiFailures24h int64
	h.db.Model(&models.AIUsageLog{}).Where("created_at >= ?", since24h).Count(&aiCalls24h)
	h.db.Model(&models.AIUsageLog{}).Where("created_at >= ? AND success = ?", since24h, false).Count(&aiFailures24h)
	writeGauge(&b, "change_ai_calls_24h", "AI API calls in the last 24 hours", float64(aiCalls24h))
	writeGauge(&b, "change_ai_failures_24h", "Failed AI API calls in the last 24 hours", float64(aiFailures24h))

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
