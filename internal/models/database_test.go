package models

import (
	"testing"

	"github.com/shiporsink/change/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSeedDefaultDataIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 2; i++ {
		if err := SeedDefaultData(db); err != nil {
			t.Fatalf("SeedDefaultData() run %d error = %v", i+1, err)
		}
	}

	var prompts int64
	db.Model(&PromptTemplate{}).Count(&prompts)
	if prompts != int64(len(DefaultPrompts)) {
		t.Errorf("prompt count = %d, want %d", prompts, len(DefaultPrompts))
	}

	var configs int64
	db.Model(&SystemConfig{}).Count(&configs)
	if configs != int64(len(DefaultSystemConfigs)) {
		t.Errorf("config count = %d, want %d", configs, len(DefaultSystemConfigs))
	}
}

func TestSeedKeepsEditedPrompt(t *testing.T) {
	db := setupTestDB(t)
	if err := SeedDefaultData(db); err != nil {
		t.Fatal(err)
	}
	db.Model(&PromptTemplate{}).Where(&PromptTemplate{Key: PromptCoachChat}).Update("content", "custom")

	if err := SeedDefaultData(db); err != nil {
		t.Fatal(err)
	}
	var p PromptTemplate
	db.Where(&PromptTemplate{Key: PromptCoachChat}).First(&p)
	if p.Content != "custom" {
		t.Errorf("seed overwrote edited prompt: %q", p.Content)
	}
}

func TestProjectStakeholderScores(t *testing.T) {
	ps := ProjectStakeholder{ADKARFields: ADKARFields{Awareness: 10, Desire: 20, Knowledge: 30, Ability: 40, Reinforcement: 50}}
	s := ps.Scores()
	if s.Awareness != 10 || s.Reinforcement != 50 {
		t.Errorf("Scores() = %+v", s)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"short", "****"},
		{"sk-1234567890abcd", "sk-1****abcd"},
	}
	for _, tt := range tests {
		c := LLMConfig{APIKey: tt.key}
		if got := c.MaskAPIKey(); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSetDefaultConfigValue(t *testing.T) {
	original := make([]SystemConfig, len(DefaultSystemConfigs))
	copy(original, DefaultSystemConfigs)
	t.Cleanup(func() { DefaultSystemConfigs = original })

	db := setupTestDB(t)
	db.Create(&SystemConfig{Key: "chat_history_limit", Value: "8", Type: "int", Group: "chat"})

	SetDefaultConfigValue("log_retention_days", "7")
	SetDefaultConfigValue("chat_history_limit", "50")
	SetDefaultConfigValue("no_such_key", "1")
	if err := SeedDefaultData(db); err != nil {
		t.Fatal(err)
	}

	var retention, limit SystemConfig
	db.Where(&SystemConfig{Key: "log_retention_days"}).First(&retention)
	db.Where(&SystemConfig{Key: "chat_history_limit"}).First(&limit)
	if retention.Value != "7" {
		t.Errorf("log_retention_days = %q, want 7", retention.Value)
	}
	if limit.Value != "8" {
		t.Errorf("existing chat_history_limit overwritten: %q", limit.Value)
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	original := make([]SystemConfig, len(DefaultSystemConfigs))
	copy(original, DefaultSystemConfigs)
	t.Cleanup(func() { DefaultSystemConfigs = original })

	cfg := config.DefaultConfig()
	cfg.Chat.HistoryLimit = 40
	cfg.Chat.RetentionDays = 0
	ApplyConfigDefaults(cfg)

	values := map[string]string{}
	for _, c := range DefaultSystemConfigs {
		values[c.Key] = c.Value
	}
	if values["chat_history_limit"] != "40" {
		t.Errorf("chat_history_limit = %q, want 40", values["chat_history_limit"])
	}
	if values["chat_retention_days"] != "180" {
		t.Errorf("zero retention should keep the default, got %q", values["chat_retention_days"])
	}
}
