package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

// StakeholderHandler serves the stakeholder directory and the per-project
// scored links.
type StakeholderHandler struct {
	stakeholderService *services.StakeholderService
}

func NewStakeholderHandler(db *gorm.DB) *StakeholderHandler {
	return &StakeholderHandler{
		stakeholderService: services.NewStakeholderService(db),
	}
}

// List returns the caller's stakeholders
// GET /api/stakeholders
func (h *StakeholderHandler) List(c *gin.Context) {
	var req services.StakeholderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.stakeholderService.List(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/stakeholders/:id
func (h *StakeholderHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	stakeholder, err := h.stakeholderService.Get(id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stakeholder)
}

// POST /api/stakeholders
func (h *StakeholderHandler) Create(c *gin.Context) {
	var req services.CreateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	stakeholder, err := h.stakeholderService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, stakeholder)
}

// PUT /api/stakeholders/:id
func (h *StakeholderHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	stakeholder, err := h.stakeholderService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stakeholder)
}

// Delete removes a stakeholder together with its project links.
// DELETE /api/stakeholders/:id
func (h *StakeholderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.stakeholderService.Delete(id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "stakeholder deleted successfully"})
}

// ListForProject returns the scored stakeholders of a project
// GET /api/projects/:id/stakeholders
func (h *StakeholderHandler) ListForProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	links, err := h.stakeholderService.ListForProject(projectID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, links)
}

// AddToProject links a directory stakeholder to a project with its scores
// POST /api/projects/:id/stakeholders
func (h *StakeholderHandler) AddToProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.AddProjectStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	link, err := h.stakeholderService.AddToProject(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, link)
}

// UpdateLink changes scores, type or notes. Score changes are snapshotted.
// PUT /api/projects/:id/stakeholders/:psid
func (h *StakeholderHandler) UpdateLink(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	linkID, ok := idParam(c, "psid")
	if !ok {
		return
	}

	var req services.UpdateProjectStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	link, err := h.stakeholderService.UpdateLink(projectID, linkID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, link)
}

// DELETE /api/projects/:id/stakeholders/:psid
func (h *StakeholderHandler) RemoveLink(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	linkID, ok := idParam(c, "psid")
	if !ok {
		return
	}

	if err := h.stakeholderService.RemoveLink(projectID, linkID, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "stakeholder removed from project"})
}

// History returns the score snapshots of a project stakeholder, oldest first
// GET /api/projects/:id/stakeholders/:psid/history
func (h *StakeholderHandler) History(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	linkID, ok := idParam(c, "psid")
	if !ok {
		return
	}

	history, err := h.stakeholderService.History(projectID, linkID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, history)
}
