package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/shiporsink/change/internal/services/insights"
)

func TestScriptCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewScriptService(db)

	s, err := svc.Create(testUser, &CreateScriptRequest{Content: "  How has the new system affected your week?  "})
	if err != nil {
		t.Fatal(err)
	}
	if s.Category != insights.TagQuestion {
		t.Errorf("Category = %q, want suggested %q", s.Category, insights.TagQuestion)
	}
	if s.Title != "How has the new system affected your week?" {
		t.Errorf("Title = %q", s.Title)
	}

	long := strings.Repeat("word ", 30)
	s, _ = svc.Create(testUser, &CreateScriptRequest{Content: long, Category: insights.TagClosing})
	if s.Category != insights.TagClosing {
		t.Errorf("explicit category overridden: %q", s.Category)
	}
	if n := len([]rune(s.Title)); n > 61 || !strings.HasSuffix(s.Title, "…") {
		t.Errorf("Title = %q, want truncated", s.Title)
	}
}

func TestScriptListFiltersAndSort(t *testing.T) {
	db := setupTestDB(t)
	svc := NewScriptService(db)

	a, _ := svc.Create(testUser, &CreateScriptRequest{Content: "Thank you, let's agree next steps", Category: insights.TagClosing, StakeholderType: "champion"})
	b, _ := svc.Create(testUser, &CreateScriptRequest{Content: "I understand this is difficult", Category: insights.TagEmpathy, StakeholderType: "resistant"})
	svc.Create(otherUser, &CreateScriptRequest{Content: "not mine"})

	svc.Use(b.ID, testUser)
	svc.Use(b.ID, testUser)
	svc.Use(a.ID, testUser)

	resp, err := svc.List(testUser, &ScriptListRequest{Sort: "popular"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Items[0].ID != b.ID {
		t.Errorf("popular order = %+v", resp.Items)
	}
	if resp.Items[0].UsageCount != 2 || resp.Items[0].LastUsedAt == nil {
		t.Errorf("usage not tracked: %+v", resp.Items[0])
	}

	resp, _ = svc.List(testUser, &ScriptListRequest{Category: insights.TagClosing})
	if resp.Total != 1 || resp.Items[0].ID != a.ID {
		t.Errorf("category filter = %+v", resp.Items)
	}
	resp, _ = svc.List(testUser, &ScriptListRequest{StakeholderType: "resistant"})
	if resp.Total != 1 || resp.Items[0].ID != b.ID {
		t.Errorf("type filter = %+v", resp.Items)
	}
	resp, _ = svc.List(testUser, &ScriptListRequest{Search: "difficult"})
	if resp.Total != 1 {
		t.Errorf("search total = %d", resp.Total)
	}
}

func TestScriptUpdateDeleteOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewScriptService(db)
	s, _ := svc.Create(testUser, &CreateScriptRequest{Content: "Let's start"})

	if _, err := svc.Update(s.ID, otherUser, &UpdateScriptRequest{Title: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update error = %v", err)
	}
	if _, err := svc.Use(s.ID, otherUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign use error = %v", err)
	}

	updated, err := svc.Update(s.ID, testUser, &UpdateScriptRequest{Title: strPtr("Opener"), Explanation: strPtr("warm up")})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Opener" || updated.Explanation != "warm up" || updated.Content != "Let's start" {
		t.Errorf("updated = %+v", updated)
	}

	if err := svc.Delete(s.ID, otherUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete error = %v", err)
	}
	if err := svc.Delete(s.ID, testUser); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(s.ID, testUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted script still readable: %v", err)
	}
}
