package services

import (
	"testing"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testUser  = "0b9a8c4e-6b0f-4d3a-9a57-1f1d2c3b4a5e"
	otherUser = "7c2e1f90-3d4b-4e6a-8f1c-2b3a4c5d6e7f"
)

// setupTestDB returns a migrated and seeded in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := models.SeedDefaultData(db); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return db
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func strPtr(v string) *string {
	return &v
}
func boolPtr(v bool) *bool { return &v }
