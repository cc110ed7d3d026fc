package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
)

type StarterHandler struct {
	starterService *services.StarterService
}

func NewStarterHandler(starters *services.StarterService) *StarterHandler {
	return &StarterHandler{starterService: starters}
}

// Generate asks the LLM for conversation starters tailored to one project
// stakeholder. The raw answer is always returned so the client can show it
// when nothing could be parsed.
// POST /api/projects/:id/stakeholders/:psid/starters
func (h *StarterHandler) Generate(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	linkID, ok := idParam(c, "psid")
	if !ok {
		return
	}

	resp, err := h.starterService.Generate(c.Request.Context(), projectID, linkID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// Save stores a starter in the script library
// POST /api/projects/:id/stakeholders/:psid/starters/save
func (h *StarterHandler) Save(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	linkID, ok := idParam(c, "psid")
	if !ok {
		return
	}

	var req services.SaveStarterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	script, err := h.starterService.Save(projectID, linkID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, script)
}
