package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shiporsink/change/internal/models"
)

// fakeCompleter answers with the queued replies in order and records
// every request.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []*CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req *CompletionRequest) (*CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	reply := "ok"
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	return &CompletionResult{Content: reply, Provider: "fake", Model: "fake-1"}, nil
}

func (f *fakeCompleter) last() *CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type fakeQueue struct {
	tasks []*InsightTask
}

func (q *fakeQueue) Enqueue(task *InsightTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}
func (q *fakeQueue) IsAsync() bool { return false }
func (q *fakeQueue) Close() error  { return nil }

func TestChatSendStoresExchange(t *testing.T) {
	db := setupTestDB(t)
	ai := &fakeCompleter{replies: []string{"  Talk to Ana first.  "}}
	queue := &fakeQueue{}
	svc := NewChatService(db, ai, queue)
	project := createProject(t, db, testUser, "ERP")

	reply, err := svc.Send(context.Background(), testUser, &SendChatRequest{ProjectID: &project.ID, Message: " Who should I talk to? "})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.UserMessage.Content != "Who should I talk to?" || reply.AssistantMessage.Content != "Talk to Ana first." {
		t.Errorf("reply = %+v", reply)
	}
	if reply.UserMessage.ID == 0 || reply.AssistantMessage.ID == 0 {
		t.Error("messages not stored")
	}

	req := ai.last()
	if req.Feature != models.FeatureChat || req.ProjectID == nil || *req.ProjectID != project.ID {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.System, "ERP [active]") {
		t.Errorf("system prompt lacks project line:\n%s", req.System)
	}
	if !strings.Contains(req.System, "## Stakeholders across projects") {
		t.Errorf("system prompt lacks context block:\n%s", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != models.ChatRoleUser {
		t.Errorf("messages = %+v", req.Messages)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.UserMessageID != reply.UserMessage.ID || task.AssistantMessageID != reply.AssistantMessage.ID {
		t.Errorf("task = %+v", task)
	}
}

func TestChatSendFailureStoresNothing(t *testing.T) {
	db := setupTestDB(t)
	ai := &fakeCompleter{err: fmt.Errorf("%w: all providers failed", ErrAIUnavailable)}
	queue := &fakeQueue{}
	svc := NewChatService(db, ai, queue)

	_, err := svc.Send(context.Background(), testUser, &SendChatRequest{Message: "hello"})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("error = %v, want ErrAIUnavailable", err)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	if count != 0 {
		t.Errorf("stored %d messages after failure", count)
	}
	if len(queue.tasks) != 0 {
		t.Error("task queued after failure")
	}
}

func TestChatSendValidation(t *testing.T) {
	db := setupTestDB(t)
	ai := &fakeCompleter{}
	svc := NewChatService(db, ai, nil)
	project := createProject(t, db, otherUser, "Theirs")

	if _, err := svc.Send(context.Background(), testUser, &SendChatRequest{Message: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank message error = %v", err)
	}
	if _, err := svc.Send(context.Background(), testUser, &SendChatRequest{ProjectID: &project.ID, Message: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign project error = %v", err)
	}
	if len(ai.requests) != 0 {
		t.Error("LLM called for a rejected message")
	}

	// Read access is enough to chat about a shared project.
	acceptMember(t, db, project.ID, testUser)
	if _, err := svc.Send(context.Background(), testUser, &SendChatRequest{ProjectID: &project.ID, Message: "hi"}); err != nil {
		t.Errorf("shared project error = %v", err)
	}
}

func TestChatHistoryLimitAndScope(t *testing.T) {
	db := setupTestDB(t)
	ai := &fakeCompleter{}
	svc := NewChatService(db, ai, nil)
	NewSystemConfigService(db).Set("chat_history_limit", "4")
	project := createProject(t, db, testUser, "ERP")

	for i := 1; i <= 3; i++ {
		if _, err := svc.Send(context.Background(), testUser, &SendChatRequest{Message: fmt.Sprintf("general %d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	svc.Send(context.Background(), testUser, &SendChatRequest{ProjectID: &project.ID, Message: "project 1"})

	svc.Send(context.Background(), testUser, &SendChatRequest{Message: "general 4"})
	turns := ai.last().Messages
	// 4 history messages plus the new one.
	if len(turns) != 5 {
		t.Fatalf("turns = %d, want 5", len(turns))
	}
	if turns[0].Content != "general 2" || turns[4].Content != "general 4" {
		t.Errorf("turns = %+v", turns)
	}
	for _, turn := range turns {
		if strings.HasPrefix(turn.Content, "project") {
			t.Error("project message leaked into the general conversation")
		}
	}

	general, _ := svc.History(testUser, &ChatHistoryRequest{})
	if len(general) != 8 || general[0].Content != "general 1" {
		t.Errorf("general history = %d messages, first %q", len(general), general[0].Content)
	}
	scoped, _ := svc.History(testUser, &ChatHistoryRequest{ProjectID: &project.ID})
	if len(scoped) != 2 {
		t.Errorf("project history = %d, want 2", len(scoped))
	}
	limited, _ := svc.History(testUser, &ChatHistoryRequest{Limit: 3})
	if len(limited) != 3 || limited[2].Role != models.ChatRoleAssistant {
		t.Errorf("limited history = %+v", limited)
	}
}

func TestChatClear(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, &fakeCompleter{}, nil)
	project := createProject(t, db, testUser, "ERP")

	svc.Send(context.Background(), testUser, &SendChatRequest{Message: "general"})
	svc.Send(context.Background(), testUser, &SendChatRequest{ProjectID: &project.ID, Message: "project"})

	n, err := svc.Clear(testUser, nil)
	if err != nil || n != 2 {
		t.Fatalf("Clear() = %d, %v", n, err)
	}
	left, _ := svc.History(testUser, &ChatHistoryRequest{ProjectID: &project.ID})
	if len(left) != 2 {
		t.Errorf("project conversation cleared too: %d left", len(left))
	}
}
