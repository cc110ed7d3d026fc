package models

import (
	"time"

	"gorm.io/gorm"
)

// ConversationScript is a saved talking point, usually a parsed starter.
type ConversationScript struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          string         `gorm:"size:64;index;not null" json:"user_id"`
	Title           string         `gorm:"size:200" json:"title"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	Explanation     string         `gorm:"type:text" json:"explanation"`
	Category        string         `gorm:"size:20;index" json:"category"`
	StakeholderType string         `gorm:"size:20" json:"stakeholder_type"`
	UsageCount      int            `gorm:"default:0" json:"usage_count"`
	LastUsedAt      *time.Time     `json:"last_used_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ConversationScript) TableName() string { return "conversation_scripts" }
