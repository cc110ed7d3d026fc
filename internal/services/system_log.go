package services

import (
	"encoding/json"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitSystemLogger sets where audit events are persisted. Passing nil
// turns persistence off.
func InitSystemLogger(db *gorm.DB) {
	auditDB = db
}

// AuditEvent is one entry of the operational trail shown to admins.
type AuditEvent struct {
	Module    string
	Action    string
	Message   string
	UserID    string
	IP        string
	UserAgent string
	Extra     interface{}
}

func (e AuditEvent) Info()  { e.write("info") }
func (e AuditEvent) Warn()  { e.write("warning") }
func (e AuditEvent) Error() { e.write("error") }

func (e AuditEvent) write(level string) {
	ev := logger.Debug()
	switch level {
	case "warning":
		ev = logger.Warn()
	case "error":
		ev = logger.Error()
	}
	ev.Str("module", e.Module).Str("action", e.Action).Str("user_id", e.UserID).Msg(e.Message)

	if auditDB == nil {
		return
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    e.Module,
		Action:    e.Action,
		Message:   e.Message,
		UserID:    e.UserID,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		CreatedAt: time.Now(),
	}
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			entry.Extra = string(b)
		}
	}
	if err := auditDB.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("module", e.Module).Msg("[SystemLog] failed to persist audit event")
	}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type SystemLogListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	UserID    string `form:"user_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}

	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.UserID != "" {
		query = query.Where("user_id = ?", req.UserID)
	}
	if t, err := time.ParseInLocation(time.DateOnly, req.StartDate, time.Local); err == nil {
		query = query.Where("created_at >= ?", t)
	}
	if t, err := time.ParseInLocation(time.DateOnly, req.EndDate, time.Local); err == nil {
		query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	resp := &SystemLogListResponse{Page: page, PageSize: pageSize}
	if err := query.Count(&resp.Total).Error; err != nil {
		return nil, err
	}
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&resp.Items).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SystemLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.SystemLog{}).Distinct("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CleanupOldLogs deletes logs older than retentionDays and returns the
// number of deleted rows. A non-positive retention disables cleanup.
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoffTime).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
