package models

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCancelled = "cancelled"
)

// Project is a change initiative owned by one user.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"size:64;index;not null" json:"user_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:active;index" json:"status"`
	LogoURL     string         `gorm:"size:500" json:"logo_url"`
	Country     string         `gorm:"size:8" json:"country"` // holiday calendar for milestones, e.g. US, GB, CN
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
