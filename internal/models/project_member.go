package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectMember is an invitation to view a project. It stays pending until
// the invitee redeems the one-time token; only the bcrypt hash is stored.
type ProjectMember struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ProjectID      uint           `gorm:"index;not null" json:"project_id"`
	Project        *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email          string         `gorm:"size:255;not null" json:"email"`
	TokenHash      string         `gorm:"size:100" json:"-"`
	Role           string         `gorm:"size:20;default:viewer" json:"role"`
	InvitedBy      string         `gorm:"size:64" json:"invited_by"`
	AcceptedUserID *string        `gorm:"size:64;index" json:"accepted_user_id"`
	AcceptedAt     *time.Time     `json:"accepted_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }

// Accepted reports whether the invitation has been redeemed.
func (m *ProjectMember) Accepted() bool {
	return m.AcceptedUserID != nil
}
