package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type ContextHandler struct {
	contextService *services.ContextService
}

func NewContextHandler(db *gorm.DB) *ContextHandler {
	return &ContextHandler{contextService: services.NewContextService(db)}
}

// Get returns the cross-project context of the caller
// GET /api/context
func (h *ContextHandler) Get(c *gin.Context) {
	ctx, err := h.contextService.Build(middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, ctx)
}

// Prompt returns the context rendered as the text given to the coach
// GET /api/context/prompt
func (h *ContextHandler) Prompt(c *gin.Context) {
	prompt, err := h.contextService.Prompt(middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"prompt": prompt})
}
