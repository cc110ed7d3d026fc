package main

import (
	"fmt"

	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "changectl",
	Short: "changectl - maintenance tool for the change-management backend",
	Long: `changectl runs maintenance tasks against the database configured for the
server: schema migration, seeding, inspecting what the coach knows about a
user, and checking how LLM answers are parsed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")

	rootCmd.AddCommand(migrateCmd, seedCmd, contextCmd, parseStartersCmd, devTokenCmd)
}

// loadConfig reads the server config and applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	return cfg, nil
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := models.Open(&cfg.Database, gormlogger.Warn)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
