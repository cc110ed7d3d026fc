package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, holidays *services.HolidayService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db, holidays),
	}
}

// Overview returns a summary for every project the caller can see
// GET /api/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	resp, err := h.dashboardService.Overview(middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// Project returns engagement, risk, per-stakeholder rollups and milestone
// counts for one project
// GET /api/projects/:id/dashboard
func (h *DashboardHandler) Project(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.dashboardService.ProjectDashboard(projectID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}
