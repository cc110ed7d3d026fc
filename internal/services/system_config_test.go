package services

import (
	"errors"
	"testing"
)

func TestSystemConfigService_GetSet(t *testing.T) {
	svc := NewSystemConfigService(setupTestDB(t))

	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault() = %q, expected fallback", got)
	}
	if got := svc.GetInt("log_retention_days", 0); got != 30 {
		t.Errorf("seeded log_retention_days = %d, expected 30", got)
	}

	if err := svc.Set("log_retention_days", "7"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := svc.GetInt("log_retention_days", 0); got != 7 {
		t.Errorf("GetInt() after Set = %d, expected 7", got)
	}

	if err := svc.Set("brand_new", "x"); err != nil {
		t.Fatalf("Set() new key error = %v", err)
	}
	if got, _ := svc.Get("brand_new"); got != "x" {
		t.Errorf("Get(brand_new) = %q", got)
	}
}

func TestSystemConfigService_GetIntInvalid(t *testing.T) {
	svc := NewSystemConfigService(setupTestDB(t))
	_ = svc.Set("chat_history_limit", "lots")

	if got := svc.GetInt("chat_history_limit", 20); got != 20 {
		t.Errorf("GetInt() with bad value = %d, expected default 20", got)
	}
}

func TestSystemConfigService_UpdateBatch(t *testing.T) {
	svc := NewSystemConfigService(setupTestDB(t))

	if err := svc.UpdateBatch(map[string]string{"chat_history_limit": "10"}); err != nil {
		t.Fatalf("UpdateBatch() error = %v", err)
	}
	if got := svc.GetInt("chat_history_limit", 0); got != 10 {
		t.Errorf("chat_history_limit = %d, expected 10", got)
	}

	err := svc.UpdateBatch(map[string]string{"chat_history_limit": "5", "unknown": "1"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBatch() with unknown key error = %v, expected ErrNotFound", err)
	}

	groups, _ := svc.GetByGroup("chat")
	if len(groups) != 2 {
		t.Errorf("chat group has %d settings, expected 2", len(groups))
	}
}
