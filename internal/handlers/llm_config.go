package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type LLMConfigHandler struct {
	llmConfigService *services.LLMConfigService
}

func NewLLMConfigHandler(db *gorm.DB) *LLMConfigHandler {
	return &LLMConfigHandler{
		llmConfigService: services.NewLLMConfigService(db),
	}
}

// GET /api/admin/llm-configs
func (h *LLMConfigHandler) List(c *gin.Context) {
	var req services.LLMConfigListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.llmConfigService.List(&req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// GET /api/admin/llm-configs/:id
func (h *LLMConfigHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	config, err := h.llmConfigService.GetByID(id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, config)
}

// POST /api/admin/llm-configs
func (h *LLMConfigHandler) Create(c *gin.Context) {
	var req services.CreateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	config, err := h.llmConfigService.Create(&req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, config)
}

// PUT /api/admin/llm-configs/:id
func (h *LLMConfigHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	config, err := h.llmConfigService.Update(id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, config)
}

// DELETE /api/admin/llm-configs/:id
func (h *LLMConfigHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.llmConfigService.Delete(id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "config deleted successfully"})
}

// GetActive returns the configs the AI service will try, in order
// GET /api/admin/llm-configs/active
func (h *LLMConfigHandler) GetActive(c *gin.Context) {
	configs, err := h.llmConfigService.GetActive()
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, configs)
}
