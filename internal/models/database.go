package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shiporsink/change/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the global DB.
func Open(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig, debug bool) error {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := Open(cfg, level)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AutoMigrate creates or updates every table on db.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{},
		&ProjectMember{},
		&StakeholderGroup{},
		&GlobalStakeholder{},
		&ProjectStakeholder{},
		&ScoreHistory{},
		&ProjectGroup{},
		&Milestone{},
		&ConversationScript{},
		&ChatMessage{},
		&ChatInsight{},
		&LLMConfig{},
		&PromptTemplate{},
		&SystemConfig{},
		&SchedulerLock{},
		&SystemLog{},
		&AIUsageLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// DefaultPrompts are the system prompt templates seeded on first start.
var DefaultPrompts = []PromptTemplate{
	{
		Key:         PromptCoachChat,
		Name:        "Change coach chat",
		Description: "System prompt of the AI coaching chat",
		Content: `You are an experienced change management coach who uses the ADKAR model (Awareness, Desire, Knowledge, Ability, Reinforcement).
Help the user move their stakeholders through the change. Be concrete, refer to people by name, and keep answers short unless asked for detail.
When the history below shows a recurring pattern, point it out and suggest how to handle it this time.

Current project: {{project}}

What you know about the user's organisation and past projects:
{{context}}`,
		Variables: `["project", "context"]`,
		IsSystem:  true,
	},
	{
		Key:         PromptConversationStarters,
		Name:        "Conversation starters",
		Description: "Generates numbered conversation starters for one stakeholder",
		Content: `You are a change management coach. Suggest 5 conversation starters for a one-to-one with the stakeholder below.

Stakeholder: {{stakeholder}} ({{role}})
Project: {{project}}
Attitude: {{stakeholder_type}}
ADKAR scores: {{adkar}}
Weakest stage: {{bottleneck}}
Notes: {{notes}}

Answer with a numbered list only. Put each starter in double quotes, followed by " - " and one sentence on why it helps. Example:
1. "How has the new process affected your week?" - opens the conversation on their terms`,
		Variables: `["stakeholder", "role", "project", "stakeholder_type", "adkar", "bottleneck", "notes"]`,
		IsSystem:  true,
	},
	{
		Key:         PromptInsightExtraction,
		Name:        "Chat insight extraction",
		Description: "Extracts stakeholder facts from a chat exchange",
		Content: `Extract facts about named stakeholders from the conversation below.
Return only a JSON array. Each element has "stakeholder", "category" (one of concern, commitment, risk, preference, other) and "content" (one sentence).
Return [] when there is nothing worth remembering.

User: {{user_message}}
Coach: {{assistant_message}}`,
		Variables: `["user_message", "assistant_message"]`,
		IsSystem:  true,
	},
}

// DefaultPromptByKey returns the built-in template for key, or nil.
func DefaultPromptByKey(key string) *PromptTemplate {
	for i := range DefaultPrompts {
		if DefaultPrompts[i].Key == key {
			p := DefaultPrompts[i]
			return &p
		}
	}
	return nil
}

// DefaultSystemConfigs are the runtime settings seeded on first start.
var DefaultSystemConfigs = []SystemConfig{
	{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	{Key: "chat_retention_days", Value: "180", Type: "int", Group: "chat", Label: "Chat History Retention Days"},
	{Key: "chat_history_limit", Value: "20", Type: "int", Group: "chat", Label: "Chat Messages Sent As History"},
	{Key: "invite_expire_hours", Value: "168", Type: "int", Group: "system", Label: "Invitation Validity (hours)"},
	{Key: "milestone_rollover_cron", Value: "5 0 * * *", Type: "string", Group: "scheduler", Label: "Milestone Roll-forward Schedule"},
}

// SetDefaultConfigValue changes the value seeded for key. Rows that
// already exist keep their stored value.
func SetDefaultConfigValue(key, value string) {
	for i := range DefaultSystemConfigs {
		if DefaultSystemConfigs[i].Key == key {
			DefaultSystemConfigs[i].Value = value
			return
		}
	}
}

// ApplyConfigDefaults makes positive values from the config file the
// seeded defaults of the matching settings.
func ApplyConfigDefaults(cfg *config.Config) {
	defaults := map[string]int{
		"log_retention_days":  cfg.Log.RetentionDays,
		"chat_history_limit":  cfg.Chat.HistoryLimit,
		"chat_retention_days": cfg.Chat.RetentionDays,
	}
	for key, value := range defaults {
		if value > 0 {
			SetDefaultConfigValue(key, strconv.Itoa(value))
		}
	}
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData(db *gorm.DB) error {
	for _, prompt := range DefaultPrompts {
		var existing PromptTemplate
		err := db.Where(&PromptTemplate{Key: prompt.Key}).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p := prompt
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}

	for _, cfg := range DefaultSystemConfigs {
		var count int64
		db.Model(&SystemConfig{}).Where(&SystemConfig{Key: cfg.Key}).Count(&count)
		if count == 0 {
			c := cfg
			if err := db.Create(&c).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
