package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

// ProjectMemberHandler provides the invitation and member endpoints.
type ProjectMemberHandler struct {
	inviteService *services.InviteService
}

func NewProjectMemberHandler(db *gorm.DB) *ProjectMemberHandler {
	return &ProjectMemberHandler{inviteService: services.NewInviteService(db)}
}

// Invite creates or refreshes an invitation. The token is only returned here.
// POST /api/projects/:id/invites
func (h *ProjectMemberHandler) Invite(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.inviteService.Invite(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// Accept redeems an invitation token for the caller.
// POST /api/invites/accept
func (h *ProjectMemberHandler) Accept(c *gin.Context) {
	var req services.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	member, err := h.inviteService.Accept(middleware.GetUserID(c), middleware.GetEmail(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, member)
}

// List returns all members of a project.
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	members, err := h.inviteService.Members(projectID, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, members)
}

// Remove revokes an invitation or membership. Members may remove themselves.
// DELETE /api/projects/:id/members/:memberId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := idParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.inviteService.Remove(projectID, memberID, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
