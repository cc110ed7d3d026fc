package models

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the coaching chat. ProjectID is nil for the
// general, cross-project conversation.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index:idx_chat_user_project;not null" json:"user_id"`
	ProjectID *uint     `gorm:"index:idx_chat_user_project" json:"project_id"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// ChatInsight is a fact extracted from a chat exchange in the background.
type ChatInsight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"size:64;index;not null" json:"user_id"`
	ProjectID       *uint     `gorm:"index" json:"project_id"`
	ChatMessageID   uint      `gorm:"index" json:"chat_message_id"`
	StakeholderName string    `gorm:"size:200" json:"stakeholder_name"`
	Category        string    `gorm:"size:50" json:"category"` // concern, commitment, risk, preference, other
	Content         string    `gorm:"type:text" json:"content"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (ChatInsight) TableName() string { return "chat_insights" }
