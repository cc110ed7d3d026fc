package models

import (
	"time"

	"gorm.io/gorm"
)

// Milestone types and statuses.
const (
	MilestoneKickoff  = "kickoff"
	MilestoneTraining = "training"
	MilestoneGoLive   = "golive"
	MilestoneReview   = "review"
	MilestoneOther    = "other"

	MilestoneUpcoming   = "upcoming"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
)

type Milestone struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Date        time.Time      `gorm:"index" json:"date"`
	Type        string         `gorm:"size:20;default:other" json:"type"`
	Status      string         `gorm:"size:20;default:upcoming;index" json:"status"`
	HolidayName string         `gorm:"size:200" json:"holiday_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Milestone) TableName() string { return "milestones" }
