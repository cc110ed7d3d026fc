package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/internal/models"
)

// fakeOpenAI answers /chat/completions like an OpenAI-compatible server and
// records the last request body.
func fakeOpenAI(t *testing.T, status int, content string, last *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			_ = json.NewDecoder(r.Body).Decode(last)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]interface{}{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
			"usage":   map[string]int{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetOrderedLLMConfigs(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.LLMConfig{Name: "low", Model: "m", Priority: 50, IsActive: true})
	db.Create(&models.LLMConfig{Name: "default", Model: "m", Priority: 200, IsDefault: true, IsActive: true})
	db.Create(&models.LLMConfig{Name: "high", Model: "m", Priority: 10, IsActive: true})
	inactive := models.LLMConfig{Name: "off", Model: "m", Priority: 1, IsActive: true}
	db.Create(&inactive)
	db.Model(&inactive).Update("is_active", false)

	configs := NewAIService(db, &config.OpenAIConfig{}).getOrderedLLMConfigs()

	var names []string
	for _, c := range configs {
		names = append(names, c.Name)
	}
	want := []string{"default", "high", "low"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestGetOrderedLLMConfigs_FallbackToFileConfig(t *testing.T) {
	db := setupTestDB(t)

	configs := NewAIService(db, &config.OpenAIConfig{APIKey: "sk-file", Model: "gpt-4o-mini"}).getOrderedLLMConfigs()
	if len(configs) != 1 || configs[0].Name != "fallback" || configs[0].Model != "gpt-4o-mini" {
		t.Fatalf("unexpected fallback configs: %+v", configs)
	}

	if got := NewAIService(db, &config.OpenAIConfig{}).getOrderedLLMConfigs(); len(got) != 0 {
		t.Errorf("expected no configs without an api key, got %d", len(got))
	}
}

func TestComplete_NoConfig(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewAIService(db, &config.OpenAIConfig{}).Complete(context.Background(), &CompletionRequest{Feature: models.FeatureChat})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestComplete_FallsBackAndRecordsUsage(t *testing.T) {
	db := setupTestDB(t)
	var body map[string]interface{}
	broken := fakeOpenAI(t, http.StatusInternalServerError, "", nil)
	working := fakeOpenAI(t, http.StatusOK, "Talk to Dana first.", &body)

	db.Create(&models.LLMConfig{Name: "primary", Provider: models.ProviderOpenAI, BaseURL: broken.URL + "/v1", APIKey: "k1", Model: "m1", Priority: 1, IsActive: true})
	db.Create(&models.LLMConfig{Name: "backup", Provider: models.ProviderOpenAI, BaseURL: working.URL + "/v1", APIKey: "k2", Model: "m2", Priority: 2, IsActive: true})

	projectID := uint(7)
	result, err := NewAIService(db, &config.OpenAIConfig{}).Complete(context.Background(), &CompletionRequest{
		UserID:    testUser,
		ProjectID: &projectID,
		Feature:   models.FeatureChat,
		System:    "You are a coach.",
		Messages: []ChatTurn{
			{Role: models.ChatRoleUser, Content: "hi"},
			{Role: models.ChatRoleAssistant, Content: "hello"},
			{Role: models.ChatRoleUser, Content: "who first?"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Content != "Talk to Dana first." || result.Model != "m2" || result.PromptTokens != 12 {
		t.Errorf("unexpected result %+v", result)
	}

	msgs, _ := body["messages"].([]interface{})
	if len(msgs) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(msgs))
	}
	if first := msgs[0].(map[string]interface{}); first["role"] != "system" || first["content"] != "You are a coach." {
		t.Errorf("system prompt not sent first: %v", first)
	}

	var logs []models.AIUsageLog
	db.Order("id ASC").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("expected 2 usage logs, got %d", len(logs))
	}
	if logs[0].Success || logs[0].ErrorMessage == "" {
		t.Errorf("first attempt should be a recorded failure: %+v", logs[0])
	}
	if !logs[1].Success || logs[1].TotalTokens != 17 || logs[1].UserID != testUser || *logs[1].ProjectID != 7 {
		t.Errorf("second attempt not recorded correctly: %+v", logs[1])
	}
}

func TestComplete_AllFail(t *testing.T) {
	db := setupTestDB(t)
	broken := fakeOpenAI(t, http.StatusBadGateway, "", nil)
	db.Create(&models.LLMConfig{Name: "only", BaseURL: broken.URL + "/v1", APIKey: "k", Model: "m", IsActive: true})

	_, err := NewAIService(db, &config.OpenAIConfig{}).Complete(context.Background(), &CompletionRequest{
		Feature:  models.FeatureStarters,
		Messages: []ChatTurn{{Role: models.ChatRoleUser, Content: "x"}},
	})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestComplete_EmptyAnswerIsFailure(t *testing.T) {
	db := setupTestDB(t)
	blank := fakeOpenAI(t, http.StatusOK, "   ", nil)
	db.Create(&models.LLMConfig{Name: "blank", BaseURL: blank.URL + "/v1", APIKey: "k", Model: "m", IsActive: true})

	_, err := NewAIService(db, &config.OpenAIConfig{}).Complete(context.Background(), &CompletionRequest{
		Messages: []ChatTurn{{Role: models.ChatRoleUser, Content: "x"}},
	})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable for blank answer, got %v", err)
	}
}
