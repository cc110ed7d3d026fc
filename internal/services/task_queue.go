package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/pkg/logger"
)

const (
	TaskTypeInsight = "chat:extract_insights"
	QueueInsights   = "insights"
)

// InsightTask asks for insights to be extracted from one chat exchange.
type InsightTask struct {
	UserID             string `json:"user_id"`
	ProjectID          *uint  `json:"project_id,omitempty"`
	UserMessageID      uint   `json:"user_message_id"`
	AssistantMessageID uint   `json:"assistant_message_id"`
}

// TaskProcessor handles one insight task.
type TaskProcessor func(context.Context, *InsightTask) error

// TaskQueue defines the interface for background insight extraction.
type TaskQueue interface {
	Enqueue(task *InsightTask) error
	// IsAsync returns true if tasks are handed to an external worker
	IsAsync() bool
	Close() error
}

// NewTaskQueue returns a Redis-backed queue when Redis is enabled and
// reachable, and an in-process queue otherwise.
func NewTaskQueue(cfg *config.Config) TaskQueue {
	if cfg.Redis.Enabled {
		queue, err := NewAsyncQueue(&cfg.Redis)
		if err == nil {
			logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
			return queue
		}
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
	} else {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
	}
	return NewSyncQueue()
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue hands the task to Redis. Extraction is best effort, so failed
// tasks are not retried.
func (q *AsyncQueue) Enqueue(task *InsightTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeInsight, payload),
		asynq.Queue(QueueInsights),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("[AsyncQueue] Task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs tasks in background goroutines of this process.
type SyncQueue struct {
	processor TaskProcessor
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor TaskProcessor) {
	q.processor = processor
}

// Enqueue starts the task without blocking the caller.
func (q *SyncQueue) Enqueue(task *InsightTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, task dropped")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := q.processor(ctx, task); err != nil {
			logger.Warn().Err(err).Uint("message_id", task.AssistantMessageID).Msg("[SyncQueue] Task processing failed")
		}
	}()

	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for running tasks to finish.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
