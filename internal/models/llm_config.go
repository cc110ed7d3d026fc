package models

import (
	"time"

	"gorm.io/gorm"
)

// LLM providers understood by the AI service.
const (
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
)

// LLMConfig is an LLM endpoint. Active configs are tried by ascending
// Priority, the default one first.
type LLMConfig struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Provider    string         `gorm:"size:50;default:openai" json:"provider"`
	BaseURL     string         `gorm:"size:500" json:"base_url"`
	APIKey      string         `gorm:"size:500" json:"-"`
	APIKeyMask  string         `gorm:"-" json:"api_key_mask"`
	Model       string         `gorm:"size:100" json:"model"`
	MaxTokens   int            `gorm:"default:2048" json:"max_tokens"`
	Temperature float64        `gorm:"default:0.7" json:"temperature"`
	Priority    int            `gorm:"default:100" json:"priority"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LLMConfig) TableName() string { return "llm_configs" }

// LLMConfigOrder is the order in which active configs are tried.
const LLMConfigOrder = "is_default DESC, priority ASC, id ASC"

// AfterFind fills APIKeyMask so loaded configs never need the raw key
// for display.
func (l *LLMConfig) AfterFind(tx *gorm.DB) error {
	l.APIKeyMask = l.MaskAPIKey()
	return nil
}

// MaskAPIKey returns masked API key for display
func (l *LLMConfig) MaskAPIKey() string {
	if len(l.APIKey) <= 8 {
		return "****"
	}
	return l.APIKey[:4] + "****" + l.APIKey[len(l.APIKey)-4:]
}
