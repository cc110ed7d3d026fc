package services

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultRolloverCron = "5 0 * * *"
	retentionCron       = "30 3 * * *"
	aiUsageRetention    = 365 * 24 * time.Hour
	lockTTL             = 30 * time.Minute
)

// SchedulerService runs the periodic jobs: milestone roll-forward and the
// retention cleanups. Each run takes a row in scheduler_locks first so that
// several instances sharing a database run a slot once.
type SchedulerService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
	instanceID    string
	milestones    *MilestoneService
	chat          *ChatService
	logs          *SystemLogService
	usage         *AIUsageService
	configService *SystemConfigService
	now           func() time.Time
}

func NewSchedulerService(db *gorm.DB, milestones *MilestoneService, chat *ChatService) *SchedulerService {
	host, _ := os.Hostname()
	return &SchedulerService{
		db:            db,
		instanceID:    host + "-" + uuid.NewString()[:8],
		milestones:    milestones,
		chat:          chat,
		logs:          NewSystemLogService(db),
		usage:         NewAIUsageService(db),
		configService: NewSystemConfigService(db),
		now:           time.Now,
	}
}

func (s *SchedulerService) Start() {
	s.cronScheduler = cron.New()

	rollover := s.configService.GetWithDefault("milestone_rollover_cron", defaultRolloverCron)
	if _, err := s.cronScheduler.AddFunc(rollover, s.RunRollover); err != nil {
		logger.Warnf("[Scheduler] Invalid milestone_rollover_cron %q, using %q: %v", rollover, defaultRolloverCron, err)
		rollover = defaultRolloverCron
		s.cronScheduler.AddFunc(rollover, s.RunRollover)
	}
	s.cronScheduler.AddFunc(retentionCron, s.RunRetention)

	s.cronScheduler.Start()
	logger.Infof("[Scheduler] Started as %s (rollover: %s, retention: %s)", s.instanceID, rollover, retentionCron)
}

func (s *SchedulerService) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

// RunRollover moves milestones whose date has arrived to in_progress.
func (s *SchedulerService) RunRollover() {
	now := s.now()
	if !s.acquireLock("milestone_rollover", now.Format("2006-01-02T15:04")) {
		return
	}
	n, err := s.milestones.RollForward(now)
	if err != nil {
		AuditEvent{Module: "Scheduler", Action: "Rollover", Message: "milestone roll-forward failed", Extra: map[string]string{"error": err.Error()}}.Error()
		return
	}
	if n > 0 {
		logger.Infof("[Scheduler] %d milestones moved to in_progress", n)
	}
}

// RunRetention deletes old system logs, chat messages and AI usage rows.
// A retention of 0 days keeps everything.
func (s *SchedulerService) RunRetention() {
	now := s.now()
	if !s.acquireLock("retention", now.Format("2006-01-02")) {
		return
	}

	if n, err := s.logs.CleanupOldLogs(s.configService.GetInt("log_retention_days", 30)); err != nil {
		logger.Warnf("[Scheduler] System log cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("[Scheduler] Deleted %d old system logs", n)
	}

	if days := s.configService.GetInt("chat_retention_days", 180); days > 0 && s.chat != nil {
		n, err := s.chat.CleanupBefore(now.AddDate(0, 0, -days))
		if err != nil {
			logger.Warnf("[Scheduler] Chat cleanup failed: %v", err)
		} else if n > 0 {
			logger.Infof("[Scheduler] Deleted %d old chat messages", n)
		}
	}

	if n, err := s.usage.CleanupBefore(now.Add(-aiUsageRetention)); err != nil {
		logger.Warnf("[Scheduler] AI usage cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("[Scheduler] Deleted %d old AI usage logs", n)
	}

	// Expired locks are only needed until their slot has passed.
	s.db.Where("expires_at < ?", now).Delete(&models.SchedulerLock{})
}

// acquireLock reports whether this instance owns the (name, key) slot.
// The unique index on the pair makes the insert fail for later callers.
func (s *SchedulerService) acquireLock(name, key string) bool {
	now := s.now()
	s.db.Where("lock_name = ? AND lock_key = ? AND expires_at < ?", name, key, now).Delete(&models.SchedulerLock{})

	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  s.instanceID,
		LockedAt:  now,
		ExpiresAt: now.Add(lockTTL),
	}
	if err := s.db.Create(&lock).Error; err != nil {
		var holder models.SchedulerLock
		if s.db.Where("lock_name = ? AND lock_key = ?", name, key).First(&holder).Error == nil {
			logger.Infof("[Scheduler] %s %s already taken by %s", name, key, holder.LockedBy)
		} else {
			logger.Warnf("[Scheduler] Failed to take lock %s %s: %v", name, key, err)
		}
		return false
	}
	return true
}
