package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/gorm"
)

// Project roles as seen by the caller.
const (
	RoleOwner  = "owner"
	RoleViewer = "viewer"
)

const dateLayout = "2006-01-02"

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Status   string `form:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
}

// ProjectItem is a project plus the caller's role on it.
type ProjectItem struct {
	models.Project
	Role string `json:"role"`
}

type ProjectListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []ProjectItem `json:"items"`
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
	LogoURL     string  `json:"logo_url" binding:"omitempty,url,max=500"`
	Country     string  `json:"country" binding:"omitempty,max=8"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
	LogoURL     *string `json:"logo_url" binding:"omitempty,max=500"`
	Country     *string `json:"country" binding:"omitempty,max=8"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Authorize loads a project the caller may access. Owners may read and
// write; accepted invitees may only read. Anyone else gets ErrNotFound.
func (s *ProjectService) Authorize(projectID uint, userID string, write bool) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.UserID == userID {
		return &project, nil
	}

	var count int64
	s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND accepted_user_id = ?", projectID, userID).
		Count(&count)
	if count == 0 {
		return nil, ErrNotFound
	}
	if write {
		return nil, ErrForbidden
	}
	return &project, nil
}

// sharedProjectIDs returns the projects the user joined through an invitation.
func (s *ProjectService) sharedProjectIDs(userID string) []uint {
	var ids []uint
	s.db.Model(&models.ProjectMember{}).
		Where("accepted_user_id = ?", userID).
		Pluck("project_id", &ids)
	return ids
}

// List returns the caller's own projects and the ones shared with them.
func (s *ProjectService) List(userID string, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})
	if shared := s.sharedProjectIDs(userID); len(shared) > 0 {
		query = query.Where("user_id = ? OR id IN ?", userID, shared)
	} else {
		query = query.Where("user_id = ?", userID)
	}
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	items := make([]ProjectItem, len(projects))
	for i, p := range projects {
		role := RoleViewer
		if p.UserID == userID {
			role = RoleOwner
		}
		items[i] = ProjectItem{Project: p, Role: role}
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// OwnedProjects returns every project of the user in creation order.
func (s *ProjectService) OwnedProjects(userID string) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&projects).Error
	return projects, err
}

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return &t, nil
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return nil
}

// Create stores the project and then links the caller's own stakeholder
// record to it. The link is a separate write; if it fails the project is
// kept and the failure is logged.
func (s *ProjectService) Create(userID string, req *CreateProjectRequest) (*models.Project, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}
	country, ok := NormalizeCountry(req.Country)
	if !ok {
		return nil, fmt.Errorf("%w: no holiday calendar for country %q", ErrInvalidInput, country)
	}
	if req.Status == "" {
		req.Status = models.ProjectStatusActive
	}

	project := models.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		LogoURL:     req.LogoURL,
		Country:     country,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	if err := s.attachMe(&project); err != nil {
		AuditEvent{
			Module:  "Project",
			Action:  "AttachMe",
			Message: fmt.Sprintf("could not link owner stakeholder to project %d", project.ID),
			UserID:  userID,
			Extra:   map[string]string{"error": err.Error()},
		}.Warn()
	}

	return &project, nil
}

func (s *ProjectService) attachMe(project *models.Project) error {
	var me models.GlobalStakeholder
	err := s.db.Where("user_id = ? AND is_me = ?", project.UserID, true).First(&me).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.Create(&models.ProjectStakeholder{
		ProjectID:           project.ID,
		GlobalStakeholderID: me.ID,
	}).Error
}

func (s *ProjectService) Update(id uint, userID string, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Authorize(id, userID, true)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.Country != nil {
		country, ok := NormalizeCountry(*req.Country)
		if !ok {
			return nil, fmt.Errorf("%w: no holiday calendar for country %q", ErrInvalidInput, country)
		}
		updates["country"] = country
	}

	start, end := project.StartDate, project.EndDate
	if req.StartDate != nil {
		if start, err = parseDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
		updates["start_date"] = start
	}
	if req.EndDate != nil {
		if end, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
		updates["end_date"] = end
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.Authorize(id, userID, false)
}

// Delete removes the project with its links, milestones, invitations and
// project-scoped chat.
func (s *ProjectService) Delete(id uint, userID string) error {
	if _, err := s.Authorize(id, userID, true); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var psIDs []uint
		tx.Model(&models.ProjectStakeholder{}).Where("project_id = ?", id).Pluck("id", &psIDs)
		if len(psIDs) > 0 {
			if err := tx.Where("project_stakeholder_id IN ?", psIDs).Delete(&models.ScoreHistory{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{
			&models.ProjectStakeholder{},
			&models.ProjectGroup{},
			&models.Milestone{},
			&models.ProjectMember{},
			&models.ChatMessage{},
			&models.ChatInsight{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}
