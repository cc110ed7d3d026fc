package models

import (
	"time"

	"gorm.io/gorm"
)

// Prompt template keys used by the services.
const (
	PromptCoachChat            = "coach_chat"
	PromptConversationStarters = "conversation_starters"
	PromptInsightExtraction    = "insight_extraction"
)

// PromptTemplate is an editable LLM prompt looked up by Key. Placeholders
// use the {{name}} form.
type PromptTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"column:key;uniqueIndex;size:100;not null" json:"key"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Variables   string         `gorm:"size:500" json:"variables"` // JSON array: ["context", "stakeholder"]
	IsSystem    bool           `gorm:"default:false" json:"is_system"`
	UpdatedBy   string         `gorm:"size:64" json:"updated_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PromptTemplate) TableName() string { return "prompt_templates" }
