package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/pkg/logger"
)

// Worker consumes insight tasks enqueued by AsyncQueue.
type Worker struct {
	server  *asynq.Server
	process TaskProcessor
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig, process TaskProcessor) *Worker {
	if !cfg.Enabled {
		return nil
	}

	w := &Worker{process: process}
	w.server = asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{QueueInsights: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			logger.Warn().Err(err).Str("task_id", id).Str("type", t.Type()).Msg("[Worker] Insight task failed")
		}),
	})
	return w
}

// Start begins pulling tasks in the background.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeInsight, w.handle)
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("start insight worker: %w", err)
	}
	logger.Info().Str("queue", QueueInsights).Msg("[Worker] Insight worker started")
	return nil
}

// Stop waits for in-flight tasks, then disconnects from Redis.
func (w *Worker) Stop() {
	w.server.Shutdown()
	logger.Info().Msg("[Worker] Insight worker stopped")
}

func (w *Worker) handle(ctx context.Context, t *asynq.Task) error {
	var task InsightTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("decode insight task: %v: %w", err, asynq.SkipRetry)
	}
	return w.process(ctx, &task)
}
