package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

// ReportHandler provides report generation endpoints.
type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{reportService: services.NewReportService(db)}
}

// Project returns the per-stakeholder stage and trend rows of a project
// together with the attitude distribution
// GET /api/projects/:id/report
func (h *ReportHandler) Project(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.ProjectReport(projectID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, report)
}
