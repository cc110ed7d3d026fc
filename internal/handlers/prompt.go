package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type PromptHandler struct {
	service *services.PromptService
}

func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{
		service: services.NewPromptService(db),
	}
}

// GET /api/admin/prompts
func (h *PromptHandler) List(c *gin.Context) {
	var params services.PromptListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.List(params)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}

// GET /api/admin/prompts/:id
func (h *PromptHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	prompt, err := h.service.GetByID(id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, prompt)
}

// POST /api/admin/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var req services.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompt, err := h.service.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, prompt)
}

// PUT /api/admin/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompt, err := h.service.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, prompt)
}

// Reset restores the built-in content of a system prompt
// POST /api/admin/prompts/:id/reset
func (h *PromptHandler) Reset(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	prompt, err := h.service.Reset(id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, prompt)
}

// Delete removes a custom prompt. System prompts can only be reset.
// DELETE /api/admin/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Deleted successfully"})
}
