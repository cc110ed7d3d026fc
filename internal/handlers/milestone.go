package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type MilestoneHandler struct {
	milestoneService *services.MilestoneService
	holidays         *services.HolidayService
}

func NewMilestoneHandler(db *gorm.DB, holidays *services.HolidayService) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: services.NewMilestoneService(db, holidays),
		holidays:         holidays,
	}
}

// List returns a project's milestones by date
// GET /api/projects/:id/milestones
func (h *MilestoneHandler) List(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.MilestoneListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	milestones, err := h.milestoneService.List(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, milestones)
}

// Create adds a milestone and records the holiday it falls on, if any
// POST /api/projects/:id/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	milestone, err := h.milestoneService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, milestone)
}

// PUT /api/projects/:id/milestones/:mid
func (h *MilestoneHandler) Update(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "mid")
	if !ok {
		return
	}

	var req services.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	milestone, err := h.milestoneService.Update(projectID, id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, milestone)
}

// DELETE /api/projects/:id/milestones/:mid
func (h *MilestoneHandler) Delete(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "mid")
	if !ok {
		return
	}

	if err := h.milestoneService.Delete(projectID, id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "milestone deleted successfully"})
}

// Countries lists the holiday calendars a project can use
// GET /api/holidays/countries
func (h *MilestoneHandler) Countries(c *gin.Context) {
	response.Success(c, h.holidays.GetSupportedCountries())
}
