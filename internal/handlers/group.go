package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{groupService: services.NewGroupService(db)}
}

// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.List(middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, groups)
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	group, err := h.groupService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, group)
}

// PUT /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	group, err := h.groupService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, group)
}

// Delete removes a group. Members stay in the directory without a group.
// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.Delete(id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "group deleted successfully"})
}

// GET /api/projects/:id/groups
func (h *GroupHandler) ListForProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	groups, err := h.groupService.ListForProject(projectID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, groups)
}

// POST /api/projects/:id/groups
func (h *GroupHandler) AddToProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.AddProjectGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	group, err := h.groupService.AddToProject(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, group)
}

// PUT /api/projects/:id/groups/:pgid
func (h *GroupHandler) UpdateProjectGroup(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "pgid")
	if !ok {
		return
	}

	var req services.UpdateProjectGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	group, err := h.groupService.UpdateProjectGroup(projectID, id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, group)
}

// DELETE /api/projects/:id/groups/:pgid
func (h *GroupHandler) RemoveFromProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "pgid")
	if !ok {
		return
	}

	if err := h.groupService.RemoveFromProject(projectID, id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "group removed from project"})
}
