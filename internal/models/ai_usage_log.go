package models

import "time"

// AI features recorded in usage logs.
const (
	FeatureChat              = "chat"
	FeatureStarters          = "starters"
	FeatureInsightExtraction = "insight_extraction"
)

// AIUsageLog records each LLM call for cost and usage tracking.
type AIUsageLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"size:64;index" json:"user_id"`
	ProjectID        *uint     `gorm:"index" json:"project_id"`
	Feature          string    `gorm:"size:50;index" json:"feature"`
	LLMConfigID      uint      `gorm:"index" json:"llm_config_id"`
	Provider         string    `gorm:"size:50" json:"provider"`
	Model            string    `gorm:"size:100" json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LatencyMs        int64     `json:"latency_ms"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (AIUsageLog) TableName() string { return "ai_usage_logs" }
