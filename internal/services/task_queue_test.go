package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shiporsink/change/internal/config"
)

func TestNewTaskQueue_RedisDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	q := NewTaskQueue(cfg)

	if q.IsAsync() {
		t.Error("queue should be synchronous when Redis is disabled")
	}
	if _, ok := q.(*SyncQueue); !ok {
		t.Errorf("expected *SyncQueue, got %T", q)
	}
}

func TestSyncQueue_RunsProcessor(t *testing.T) {
	q := NewSyncQueue()

	var calls int32
	var got uint
	q.SetProcessor(func(ctx context.Context, task *InsightTask) error {
		atomic.AddInt32(&calls, 1)
		got = task.AssistantMessageID
		return nil
	})

	if err := q.Enqueue(&InsightTask{UserID: testUser, AssistantMessageID: 9}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	_ = q.Close()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("processor called %d times, expected 1", calls)
	}
	if got != 9 {
		t.Errorf("processor saw message %d, expected 9", got)
	}
}

func TestSyncQueue_ProcessorErrorNotRetried(t *testing.T) {
	q := NewSyncQueue()

	var calls int32
	q.SetProcessor(func(ctx context.Context, task *InsightTask) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("llm down")
	})

	_ = q.Enqueue(&InsightTask{})
	_ = q.Close()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("processor called %d times, expected exactly 1", calls)
	}
}

func TestSyncQueue_NoProcessor(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Enqueue(&InsightTask{}); err != nil {
		t.Errorf("Enqueue() without processor should not fail, got %v", err)
	}
}

func TestNewWorker_Disabled(t *testing.T) {
	if w := NewWorker(&config.RedisConfig{Enabled: false}, nil); w != nil {
		t.Error("NewWorker should return nil when Redis is disabled")
	}
}

func TestWorker_HandleInsightTask(t *testing.T) {
	var got *InsightTask
	w := &Worker{process: func(ctx context.Context, task *InsightTask) error {
		got = task
		return nil
	}}

	err := w.handle(context.Background(), asynq.NewTask(TaskTypeInsight, []byte(`{"user_id":"u","assistant_message_id":3}`)))
	if err != nil {
		t.Fatalf("handle() error = %v", err)
	}
	if got == nil || got.UserID != "u" || got.AssistantMessageID != 3 {
		t.Errorf("processor got %+v", got)
	}

	err = w.handle(context.Background(), asynq.NewTask(TaskTypeInsight, []byte(`not json`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("bad payload error = %v, expected SkipRetry", err)
	}
}
