package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
)

// ChatHandler serves the coaching chat and the insights extracted from it.
type ChatHandler struct {
	chatService    *services.ChatService
	insightService *services.InsightService
}

func NewChatHandler(chat *services.ChatService, insights *services.InsightService) *ChatHandler {
	return &ChatHandler{chatService: chat, insightService: insights}
}

// Send asks the coach a question. Both messages are stored only when the
// LLM answered.
// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req services.SendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	reply, err := h.chatService.Send(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, reply)
}

// History returns one conversation, oldest message first
// GET /api/chat?project_id=
func (h *ChatHandler) History(c *gin.Context) {
	var req services.ChatHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	messages, err := h.chatService.History(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, messages)
}

// Clear deletes one conversation
// DELETE /api/chat?project_id=
func (h *ChatHandler) Clear(c *gin.Context) {
	projectID, ok := optionalProjectID(c)
	if !ok {
		return
	}

	deleted, err := h.chatService.Clear(middleware.GetUserID(c), projectID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted})
}

// Insights lists the facts extracted from the caller's conversations
// GET /api/chat/insights
func (h *ChatHandler) Insights(c *gin.Context) {
	var req services.InsightListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.insightService.List(middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// DELETE /api/chat/insights/:id
func (h *ChatHandler) DeleteInsight(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.insightService.Delete(id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "insight deleted"})
}
