package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

type MilestoneService struct {
	db             *gorm.DB
	projectService *ProjectService
	holidays       *HolidayService
}

func NewMilestoneService(db *gorm.DB, holidays *HolidayService) *MilestoneService {
	if holidays == nil {
		holidays = NewHolidayService()
	}
	return &MilestoneService{db: db, projectService: NewProjectService(db), holidays: holidays}
}

type MilestoneListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=upcoming in_progress completed"`
	Type   string `form:"type" binding:"omitempty,oneof=kickoff training golive review other"`
}

type CreateMilestoneRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Type        string `json:"type" binding:"omitempty,oneof=kickoff training golive review other"`
	Status      string `json:"status" binding:"omitempty,oneof=upcoming in_progress completed"`
}

type UpdateMilestoneRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Date        *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Type        *string `json:"type" binding:"omitempty,oneof=kickoff training golive review other"`
	Status      *string `json:"status" binding:"omitempty,oneof=upcoming in_progress completed"`
}

// MilestoneCounts tallies milestones by status.
type MilestoneCounts struct {
	Upcoming   int64 `json:"upcoming"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}

func (s *MilestoneService) List(projectID uint, userID string, req *MilestoneListRequest) ([]models.Milestone, error) {
	if _, err := s.projectService.Authorize(projectID, userID, false); err != nil {
		return nil, err
	}
	query := s.db.Where("project_id = ?", projectID)
	if req != nil && req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req != nil && req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	items := []models.Milestone{}
	err := query.Order("date ASC, id ASC").Find(&items).Error
	return items, err
}

func (s *MilestoneService) load(projectID, id uint) (*models.Milestone, error) {
	var m models.Milestone
	if err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *MilestoneService) Create(projectID uint, userID string, req *CreateMilestoneRequest) (*models.Milestone, error) {
	project, err := s.projectService.Authorize(projectID, userID, true)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", &req.Date)
	if err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = models.MilestoneOther
	}
	if req.Status == "" {
		req.Status = models.MilestoneUpcoming
	}

	m := models.Milestone{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        *date,
		Type:        req.Type,
		Status:      req.Status,
		HolidayName: s.holidays.HolidayName(*date, project.Country),
	}
	if m.HolidayName != "" {
		logger.Infof("[Milestone] %q on %s falls on %s", m.Title, req.Date, m.HolidayName)
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MilestoneService) Update(projectID, id uint, userID string, req *UpdateMilestoneRequest) (*models.Milestone, error) {
	project, err := s.projectService.Authorize(projectID, userID, true)
	if err != nil {
		return nil, err
	}
	m, err := s.load(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	date := m.Date
	if req.Date != nil {
		d, err := parseDate("date", req.Date)
		if err != nil {
			return nil, err
		}
		date = *d
		updates["date"] = date
	}
	// The project's country may have changed since the last save.
	updates["holiday_name"] = s.holidays.HolidayName(date, project.Country)

	if err := s.db.Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.load(projectID, id)
}

func (s *MilestoneService) Delete(projectID, id uint, userID string) error {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return err
	}
	if _, err := s.load(projectID, id); err != nil {
		return err
	}
	return s.db.Delete(&models.Milestone{}, id).Error
}

// Counts tallies a project's milestones by status.
func (s *MilestoneService) Counts(projectID uint) (MilestoneCounts, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := s.db.Model(&models.Milestone{}).
		Select("status, COUNT(*) as n").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return MilestoneCounts{}, err
	}

	var c MilestoneCounts
	for _, r := range rows {
		switch r.Status {
		case models.MilestoneUpcoming:
			c.Upcoming = r.N
		case models.MilestoneInProgress:
			c.InProgress = r.N
		case models.MilestoneCompleted:
			c.Completed = r.N
		}
		c.Total += r.N
	}
	return c, nil
}

// RollForward moves upcoming milestones whose date has arrived to
// in_progress and returns how many changed.
func (s *MilestoneService) RollForward(now time.Time) (int64, error) {
	result := s.db.Model(&models.Milestone{}).
		Where("status = ? AND date <= ?", models.MilestoneUpcoming, now).
		Update("status", models.MilestoneInProgress)
	return result.RowsAffected, result.Error
}
