package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
)

// handleError maps service errors to HTTP responses. Business-rule
// messages are passed through; anything unknown becomes a generic 500.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.Error(c, response.NewNotFound("not found"))
	case errors.Is(err, services.ErrForbidden):
		response.Error(c, response.NewForbidden("forbidden"))
	case errors.Is(err, services.ErrInvalidInput):
		response.Error(c, response.NewBadRequest(err.Error()))
	case errors.Is(err, services.ErrAIUnavailable):
		response.Error(c, response.NewBadGateway("AI service is unavailable, please try again later", err))
	default:
		response.Error(c, err)
	}
}

// idParam parses a numeric path parameter. It answers 400 itself and
// returns false when the value is not a positive integer.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalProjectID reads the project_id query parameter used to scope
// chat conversations. A missing value means the general conversation.
func optionalProjectID(c *gin.Context) (*uint, bool) {
	raw := c.Query("project_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid project_id")
		return nil, false
	}
	v := uint(id)
	return &v, true
}
