package main

import (
	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/internal/utils"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	cfg       *config.Config
	db        *gorm.DB
	holidays  *services.HolidayService
	hub       *services.SSEHub
	taskQueue services.TaskQueue
	worker    *services.Worker
	chat      *services.ChatService
	insights  *services.InsightService
	starters  *services.StarterService
	scheduler *services.SchedulerService
	aiLimiter *middleware.RateLimiter
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.Auth.JWTSecret)
	utils.SetJWTExpectations(cfg.Auth.Issuer, cfg.Auth.Audience)
	if err := utils.RegisterBindingValidators(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	// Initialize database
	if err := models.InitDB(&cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	// Auto migrate database
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	models.ApplyConfigDefaults(cfg)
	if err := models.SeedDefaultData(db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(db)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.NewTaskQueue(cfg)
	app := newAppServices(cfg, db, services.NewAIService(db, &cfg.OpenAI), taskQueue)

	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(app.insights.Process)
	}

	// Start async worker if the Redis queue is in use
	if taskQueue.IsAsync() {
		app.worker = services.NewWorker(&cfg.Redis, app.insights.Process)
		if app.worker != nil {
			if err := app.worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start worker, insights stay queued in Redis")
				app.worker = nil
			}
		}
	}

	app.scheduler.Start()

	return app
}

// newAppServices wires the services around an LLM client and a task queue.
func newAppServices(cfg *config.Config, db *gorm.DB, ai services.Completer, taskQueue services.TaskQueue) *appServices {
	holidays := services.NewHolidayService()
	hub := services.GetSSEHub()
	chat := services.NewChatService(db, ai, taskQueue)

	return &appServices{
		cfg:       cfg,
		db:        db,
		holidays:  holidays,
		hub:       hub,
		taskQueue: taskQueue,
		chat:      chat,
		insights:  services.NewInsightService(db, ai, hub),
		starters:  services.NewStarterService(db, ai),
		scheduler: services.NewSchedulerService(db, services.NewMilestoneService(db, holidays), chat),
		aiLimiter: middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
