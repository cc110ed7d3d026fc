package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/utils"
	"gorm.io/gorm"
)

// InviteService shares projects read-only through one-time tokens.
type InviteService struct {
	db             *gorm.DB
	projectService *ProjectService
	configService  *SystemConfigService
}

func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{
		db:             db,
		projectService: NewProjectService(db),
		configService:  NewSystemConfigService(db),
	}
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type AcceptInviteRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Token     string `json:"token" binding:"required,len=64"`
}

// InviteResult carries the plain token. It is shown once and never stored.
type InviteResult struct {
	Member *models.ProjectMember `json:"member"`
	Token  string                `json:"token"`
}

// Invite creates or refreshes a pending invitation for email.
func (s *InviteService) Invite(projectID uint, userID string, req *CreateInviteRequest) (*InviteResult, error) {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	token := utils.NewInviteToken()
	hash, err := utils.HashToken(token)
	if err != nil {
		return nil, fmt.Errorf("hash invite token: %w", err)
	}
	expires := time.Now().Add(time.Duration(s.configService.GetInt("invite_expire_hours", 168)) * time.Hour)

	var member models.ProjectMember
	err = s.db.Where("project_id = ? AND email = ?", projectID, email).First(&member).Error
	switch {
	case err == nil:
		if member.Accepted() {
			return nil, fmt.Errorf("%w: %s is already a member", ErrInvalidInput, email)
		}
		member.TokenHash = hash
		member.ExpiresAt = expires
		member.InvitedBy = userID
		if err := s.db.Save(&member).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		member = models.ProjectMember{
			ProjectID: projectID,
			Email:     email,
			TokenHash: hash,
			Role:      RoleViewer,
			InvitedBy: userID,
			ExpiresAt: expires,
		}
		if err := s.db.Create(&member).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	AuditEvent{Module: "Invite", Action: "Create", Message: fmt.Sprintf("invited %s to project %d", email, projectID), UserID: userID}.Info()
	return &InviteResult{Member: &member, Token: token}, nil
}

// Accept redeems a token for the caller. The caller's email must match the
// invited address; callers without an email claim cannot accept.
func (s *InviteService) Accept(userID, email string, req *AcceptInviteRequest) (*models.ProjectMember, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		return nil, ErrNotFound
	}
	if project.UserID == userID {
		return nil, fmt.Errorf("%w: you already own this project", ErrInvalidInput)
	}

	var pending []models.ProjectMember
	err := s.db.Where("project_id = ? AND accepted_user_id IS NULL AND expires_at > ?", req.ProjectID, time.Now()).Find(&pending).Error
	if err != nil {
		return nil, err
	}

	for i := range pending {
		m := &pending[i]
		if !utils.CheckToken(req.Token, m.TokenHash) {
			continue
		}
		if strings.TrimSpace(email) == "" {
			return nil, fmt.Errorf("%w: an email address is required to accept invitations", ErrForbidden)
		}
		if !strings.EqualFold(strings.TrimSpace(email), m.Email) {
			return nil, fmt.Errorf("%w: invitation was sent to a different address", ErrForbidden)
		}
		now := time.Now()
		m.AcceptedUserID = &userID
		m.AcceptedAt = &now
		m.TokenHash = ""
		if err := s.db.Save(m).Error; err != nil {
			return nil, err
		}
		AuditEvent{Module: "Invite", Action: "Accept", Message: fmt.Sprintf("%s joined project %d", m.Email, req.ProjectID), UserID: userID}.Info()
		return m, nil
	}

	return nil, fmt.Errorf("%w: invalid or expired invitation", ErrInvalidInput)
}

// Members lists invitations of a project for its owner.
func (s *InviteService) Members(projectID uint, userID string) ([]models.ProjectMember, error) {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return nil, err
	}
	members := []models.ProjectMember{}
	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&members).Error
	return members, err
}

// Remove revokes an invitation or membership. The owner may remove anyone;
// a member may remove themselves.
func (s *InviteService) Remove(projectID, memberID uint, userID string) error {
	var member models.ProjectMember
	if err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error; err != nil {
		return ErrNotFound
	}

	self := member.AcceptedUserID != nil && *member.AcceptedUserID == userID
	if !self {
		if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
			return err
		}
	}

	return s.db.Unscoped().Delete(&member).Error
}
