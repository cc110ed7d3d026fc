package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

// ScriptHandler serves the caller's library of conversation scripts.
type ScriptHandler struct {
	scriptService *services.ScriptService
}

func NewScriptHandler(db *gorm.DB) *ScriptHandler {
	return &ScriptHandler{scriptService: services.NewScriptService(db)}
}

// List returns scripts, most recent or most used first
// GET /api/scripts
func (h *ScriptHandler) List(c *gin.Context) {
	var req services.ScriptListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.scriptService.List(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// POST /api/scripts
func (h *ScriptHandler) Create(c *gin.Context) {
	var req services.CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	script, err := h.scriptService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, script)
}

// PUT /api/scripts/:id
func (h *ScriptHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	script, err := h.scriptService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, script)
}

// DELETE /api/scripts/:id
func (h *ScriptHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.scriptService.Delete(id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "script deleted successfully"})
}

// Use bumps the usage counter of a script
// POST /api/scripts/:id/use
func (h *ScriptHandler) Use(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	script, err := h.scriptService.Use(id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, script)
}
