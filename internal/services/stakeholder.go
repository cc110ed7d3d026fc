package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/gorm"
)

// StakeholderService manages the user's stakeholder directory and the
// per-project scored links to it.
type StakeholderService struct {
	db             *gorm.DB
	projectService *ProjectService
}

func NewStakeholderService(db *gorm.DB) *StakeholderService {
	return &StakeholderService{db: db, projectService: NewProjectService(db)}
}

type StakeholderListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	Search     string `form:"search"`
	Department string `form:"department"`
	GroupID    *uint  `form:"group_id"`
}

type StakeholderListResponse struct {
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Items    []models.GlobalStakeholder `json:"items"`
}

type CreateStakeholderRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Role        string `json:"role" binding:"max=200"`
	Department  string `json:"department" binding:"max=200"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	GroupID     *uint  `json:"group_id"`
	IsMe        bool   `json:"is_me"`
	ReportsToID *uint  `json:"reports_to_id"`
}

// UpdateStakeholderRequest changes only the fields present. A group_id or
// reports_to_id of 0 clears the reference.
type UpdateStakeholderRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Role        *string `json:"role" binding:"omitempty,max=200"`
	Department  *string `json:"department" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,max=255,email|eq="`
	GroupID     *uint   `json:"group_id"`
	IsMe        *bool   `json:"is_me"`
	ReportsToID *uint   `json:"reports_to_id"`
}

func (s *StakeholderService) List(userID string, req *StakeholderListRequest) (*StakeholderListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}

	var items []models.GlobalStakeholder
	var total int64

	query := s.db.Model(&models.GlobalStakeholder{}).Where("user_id = ?", userID)
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR role LIKE ? OR email LIKE ?", like, like, like)
	}
	if req.Department != "" {
		query = query.Where("department = ?", req.Department)
	}
	if req.GroupID != nil {
		query = query.Where("group_id = ?", *req.GroupID)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Group").Offset(offset).Limit(req.PageSize).Order("name ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &StakeholderListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// Get returns one of the user's stakeholders.
func (s *StakeholderService) Get(id uint, userID string) (*models.GlobalStakeholder, error) {
	var sh models.GlobalStakeholder
	if err := s.db.Preload("Group").Where("id = ? AND user_id = ?", id, userID).First(&sh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sh, nil
}

func (s *StakeholderService) checkGroup(userID string, groupID *uint) error {
	if groupID == nil || *groupID == 0 {
		return nil
	}
	var count int64
	s.db.Model(&models.StakeholderGroup{}).Where("id = ? AND user_id = ?", *groupID, userID).Count(&count)
	if count == 0 {
		return fmt.Errorf("%w: group %d not found", ErrInvalidInput, *groupID)
	}
	return nil
}

func (s *StakeholderService) checkManager(userID string, managerID *uint) error {
	if managerID == nil || *managerID == 0 {
		return nil
	}
	var count int64
	s.db.Model(&models.GlobalStakeholder{}).Where("id = ? AND user_id = ?", *managerID, userID).Count(&count)
	if count == 0 {
		return fmt.Errorf("%w: reports_to stakeholder %d not found", ErrInvalidInput, *managerID)
	}
	return nil
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// Create adds a stakeholder. Flagging it is_me clears the flag on the
// user's other stakeholders in the same transaction.
func (s *StakeholderService) Create(userID string, req *CreateStakeholderRequest) (*models.GlobalStakeholder, error) {
	if err := s.checkGroup(userID, req.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkManager(userID, req.ReportsToID); err != nil {
		return nil, err
	}

	sh := models.GlobalStakeholder{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Role:        req.Role,
		Department:  req.Department,
		Email:       req.Email,
		GroupID:     nonZero(req.GroupID),
		IsMe:        req.IsMe,
		ReportsToID: nonZero(req.ReportsToID),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsMe {
			if err := clearIsMe(tx, userID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&sh).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(sh.ID, userID)
}

func clearIsMe(tx *gorm.DB, userID string, exceptID uint) error {
	return tx.Model(&models.GlobalStakeholder{}).
		Where("user_id = ? AND is_me = ? AND id <> ?", userID, true, exceptID).
		Update("is_me", false).Error
}

func (s *StakeholderService) Update(id uint, userID string, req *UpdateStakeholderRequest) (*models.GlobalStakeholder, error) {
	sh, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if req.ReportsToID != nil && *req.ReportsToID == id {
		return nil, fmt.Errorf("%w: a stakeholder cannot report to themselves", ErrInvalidInput)
	}
	if err := s.checkGroup(userID, req.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkManager(userID, req.ReportsToID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.GroupID != nil {
		updates["group_id"] = nonZero(req.GroupID)
	}
	if req.ReportsToID != nil {
		updates["reports_to_id"] = nonZero(req.ReportsToID)
	}
	if req.IsMe != nil {
		updates["is_me"] = *req.IsMe
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsMe != nil && *req.IsMe {
			if err := clearIsMe(tx, userID, id); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.GlobalStakeholder{ID: sh.ID}).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id, userID)
}

// Delete removes the stakeholder, its project links with their history,
// and detaches anyone reporting to it.
func (s *StakeholderService) Delete(id uint, userID string) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var linkIDs []uint
		tx.Model(&models.ProjectStakeholder{}).Where("global_stakeholder_id = ?", id).Pluck("id", &linkIDs)
		if len(linkIDs) > 0 {
			if err := tx.Where("project_stakeholder_id IN ?", linkIDs).Delete(&models.ScoreHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", linkIDs).Delete(&models.ProjectStakeholder{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.GlobalStakeholder{}).
			Where("user_id = ? AND reports_to_id = ?", userID, id).
			Update("reports_to_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.GlobalStakeholder{}, id).Error
	})
}

// --- project links ---

type AddProjectStakeholderRequest struct {
	GlobalStakeholderID uint   `json:"global_stakeholder_id" binding:"required"`
	Awareness           int    `json:"awareness" binding:"score"`
	Desire              int    `json:"desire" binding:"score"`
	Knowledge           int    `json:"knowledge" binding:"score"`
	Ability             int    `json:"ability" binding:"score"`
	Reinforcement       int    `json:"reinforcement" binding:"score"`
	EngagementScore     int    `json:"engagement_score" binding:"score"`
	PerformanceScore    int    `json:"performance_score" binding:"score"`
	StakeholderType     string `json:"stakeholder_type" binding:"stakeholder_type"`
	Notes               string `json:"notes"`
}

type UpdateProjectStakeholderRequest struct {
	Awareness        *int    `json:"awareness" binding:"omitempty,score"`
	Desire           *int    `json:"desire" binding:"omitempty,score"`
	Knowledge        *int    `json:"knowledge" binding:"omitempty,score"`
	Ability          *int    `json:"ability" binding:"omitempty,score"`
	Reinforcement    *int    `json:"reinforcement" binding:"omitempty,score"`
	EngagementScore  *int    `json:"engagement_score" binding:"omitempty,score"`
	PerformanceScore *int    `json:"performance_score" binding:"omitempty,score"`
	StakeholderType  *string `json:"stakeholder_type" binding:"omitempty,stakeholder_type"`
	Notes            *string `json:"notes"`
}

// ListForProject returns the scored stakeholders of a project.
func (s *StakeholderService) ListForProject(projectID uint, userID string) ([]models.ProjectStakeholder, error) {
	if _, err := s.projectService.Authorize(projectID, userID, false); err != nil {
		return nil, err
	}
	items := []models.ProjectStakeholder{}
	err := s.db.Preload("Stakeholder.Group").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// GetLink returns one project link the caller may read.
func (s *StakeholderService) GetLink(projectID, linkID uint, userID string) (*models.ProjectStakeholder, error) {
	if _, err := s.projectService.Authorize(projectID, userID, false); err != nil {
		return nil, err
	}
	return s.loadLink(projectID, linkID)
}

func (s *StakeholderService) loadLink(projectID, linkID uint) (*models.ProjectStakeholder, error) {
	var link models.ProjectStakeholder
	err := s.db.Preload("Stakeholder.Group").
		Where("id = ? AND project_id = ?", linkID, projectID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// AddToProject links a directory stakeholder to a project and records the
// first score snapshot.
func (s *StakeholderService) AddToProject(projectID uint, userID string, req *AddProjectStakeholderRequest) (*models.ProjectStakeholder, error) {
	project, err := s.projectService.Authorize(projectID, userID, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(req.GlobalStakeholderID, project.UserID); err != nil {
		return nil, fmt.Errorf("%w: stakeholder %d not found", ErrInvalidInput, req.GlobalStakeholderID)
	}

	var count int64
	s.db.Model(&models.ProjectStakeholder{}).
		Where("project_id = ? AND global_stakeholder_id = ?", projectID, req.GlobalStakeholderID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: stakeholder already in project", ErrInvalidInput)
	}

	link := models.ProjectStakeholder{
		ProjectID:           projectID,
		GlobalStakeholderID: req.GlobalStakeholderID,
		ADKARFields: models.ADKARFields{
			Awareness:     req.Awareness,
			Desire:        req.Desire,
			Knowledge:     req.Knowledge,
			Ability:       req.Ability,
			Reinforcement: req.Reinforcement,
		},
		EngagementScore:  req.EngagementScore,
		PerformanceScore: req.PerformanceScore,
		StakeholderType:  req.StakeholderType,
		Notes:            req.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		return appendHistory(tx, &link)
	})
	if err != nil {
		return nil, err
	}
	return s.loadLink(projectID, link.ID)
}

func appendHistory(tx *gorm.DB, link *models.ProjectStakeholder) error {
	return tx.Create(&models.ScoreHistory{
		ProjectStakeholderID: link.ID,
		EngagementScore:      link.EngagementScore,
		PerformanceScore:     link.PerformanceScore,
		RecordedAt:           time.Now(),
	}).Error
}

// UpdateLink changes the scores of a project link. A change to the
// engagement or performance score appends a history snapshot.
func (s *StakeholderService) UpdateLink(projectID, linkID uint, userID string, req *UpdateProjectStakeholderRequest) (*models.ProjectStakeholder, error) {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return nil, err
	}
	link, err := s.loadLink(projectID, linkID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setInt := func(column string, v *int) {
		if v != nil {
			updates[column] = *v
		}
	}
	setInt("awareness", req.Awareness)
	setInt("desire", req.Desire)
	setInt("knowledge", req.Knowledge)
	setInt("ability", req.Ability)
	setInt("reinforcement", req.Reinforcement)
	setInt("engagement_score", req.EngagementScore)
	setInt("performance_score", req.PerformanceScore)
	if req.StakeholderType != nil {
		updates["stakeholder_type"] = *req.StakeholderType
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	scoreChanged := (req.EngagementScore != nil && *req.EngagementScore != link.EngagementScore) ||
		(req.PerformanceScore != nil && *req.PerformanceScore != link.PerformanceScore)

	if len(updates) > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.ProjectStakeholder{ID: link.ID}).Updates(updates).Error; err != nil {
				return err
			}
			if !scoreChanged {
				return nil
			}
			var fresh models.ProjectStakeholder
			if err := tx.First(&fresh, link.ID).Error; err != nil {
				return err
			}
			return appendHistory(tx, &fresh)
		})
		if err != nil {
			return nil, err
		}
	}

	return s.loadLink(projectID, linkID)
}

// RemoveLink unlinks a stakeholder from a project. The row is removed for
// good so the stakeholder can be linked again later.
func (s *StakeholderService) RemoveLink(projectID, linkID uint, userID string) error {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return err
	}
	if _, err := s.loadLink(projectID, linkID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_stakeholder_id = ?", linkID).Delete(&models.ScoreHistory{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.ProjectStakeholder{}, linkID).Error
	})
}

// History returns the score snapshots of a link, oldest first.
func (s *StakeholderService) History(projectID, linkID uint, userID string) ([]models.ScoreHistory, error) {
	if _, err := s.GetLink(projectID, linkID, userID); err != nil {
		return nil, err
	}
	history := []models.ScoreHistory{}
	err := s.db.Where("project_stakeholder_id = ?", linkID).
		Order("recorded_at ASC, id ASC").
		Find(&history).Error
	return history, err
}
