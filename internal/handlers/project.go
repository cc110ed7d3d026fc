package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns the caller's owned and shared projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.projectService.List(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a project the caller can read
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Authorize(id, middleware.GetUserID(c), false)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	project, err := h.projectService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, project)
}

// Delete deletes a project and everything scoped to it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted successfully"})
}
