package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/gorm"
)

// GroupService manages stakeholder groups and their project-level scores.
type GroupService struct {
	db             *gorm.DB
	projectService *ProjectService
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db, projectService: NewProjectService(db)}
}

type GroupRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
}

func (s *GroupService) List(userID string) ([]models.StakeholderGroup, error) {
	groups := []models.StakeholderGroup{}
	err := s.db.Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&groups).Error
	return groups, err
}

func (s *GroupService) Get(id uint, userID string) (*models.StakeholderGroup, error) {
	var group models.StakeholderGroup
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) Create(userID string, req *GroupRequest) (*models.StakeholderGroup, error) {
	group := models.StakeholderGroup{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.db.Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) Update(id uint, userID string, req *GroupRequest) (*models.StakeholderGroup, error) {
	group, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	err = s.db.Model(group).Updates(map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(id, userID)
}

// Delete removes the group and its project scores. Members stay in the
// directory without a group.
func (s *GroupService) Delete(id uint, userID string) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GlobalStakeholder{}).
			Where("user_id = ? AND group_id = ?", userID, id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("group_id = ?", id).Delete(&models.ProjectGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StakeholderGroup{}, id).Error
	})
}

// --- project groups ---

type AddProjectGroupRequest struct {
	GroupID       uint   `json:"group_id" binding:"required"`
	Awareness     int    `json:"awareness" binding:"score"`
	Desire        int    `json:"desire" binding:"score"`
	Knowledge     int    `json:"knowledge" binding:"score"`
	Ability       int    `json:"ability" binding:"score"`
	Reinforcement int    `json:"reinforcement" binding:"score"`
	Sentiment     string `json:"sentiment" binding:"omitempty,oneof=positive neutral negative"`
	Notes         string `json:"notes"`
}

type UpdateProjectGroupRequest struct {
	Awareness     *int    `json:"awareness" binding:"omitempty,score"`
	Desire        *int    `json:"desire" binding:"omitempty,score"`
	Knowledge     *int    `json:"knowledge" binding:"omitempty,score"`
	Ability       *int    `json:"ability" binding:"omitempty,score"`
	Reinforcement *int    `json:"reinforcement" binding:"omitempty,score"`
	Sentiment     *string `json:"sentiment" binding:"omitempty,oneof=positive neutral negative"`
	Notes         *string `json:"notes"`
}

func (s *GroupService) ListForProject(projectID uint, userID string) ([]models.ProjectGroup, error) {
	if _, err := s.projectService.Authorize(projectID, userID, false); err != nil {
		return nil, err
	}
	items := []models.ProjectGroup{}
	err := s.db.Preload("Group").Where("project_id = ?", projectID).Order("id ASC").Find(&items).Error
	return items, err
}

func (s *GroupService) loadProjectGroup(projectID, id uint) (*models.ProjectGroup, error) {
	var pg models.ProjectGroup
	if err := s.db.Preload("Group").Where("id = ? AND project_id = ?", id, projectID).First(&pg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pg, nil
}

func (s *GroupService) AddToProject(projectID uint, userID string, req *AddProjectGroupRequest) (*models.ProjectGroup, error) {
	project, err := s.projectService.Authorize(projectID, userID, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(req.GroupID, project.UserID); err != nil {
		return nil, fmt.Errorf("%w: group %d not found", ErrInvalidInput, req.GroupID)
	}

	var count int64
	s.db.Model(&models.ProjectGroup{}).Where("project_id = ? AND group_id = ?", projectID, req.GroupID).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: group already in project", ErrInvalidInput)
	}

	if req.Sentiment == "" {
		req.Sentiment = models.SentimentNeutral
	}
	pg := models.ProjectGroup{
		ProjectID: projectID,
		GroupID:   req.GroupID,
		ADKARFields: models.ADKARFields{
			Awareness:     req.Awareness,
			Desire:        req.Desire,
			Knowledge:     req.Knowledge,
			Ability:       req.Ability,
			Reinforcement: req.Reinforcement,
		},
		Sentiment: req.Sentiment,
		Notes:     req.Notes,
	}
	if err := s.db.Create(&pg).Error; err != nil {
		return nil, err
	}
	return s.loadProjectGroup(projectID, pg.ID)
}

func (s *GroupService) UpdateProjectGroup(projectID, id uint, userID string, req *UpdateProjectGroupRequest) (*models.ProjectGroup, error) {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return nil, err
	}
	pg, err := s.loadProjectGroup(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	for column, v := range map[string]*int{
		"awareness":     req.Awareness,
		"desire":        req.Desire,
		"knowledge":     req.Knowledge,
		"ability":       req.Ability,
		"reinforcement": req.Reinforcement,
	} {
		if v != nil {
			updates[column] = *v
		}
	}
	if req.Sentiment != nil {
		updates["sentiment"] = *req.Sentiment
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.ProjectGroup{ID: pg.ID}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.loadProjectGroup(projectID, id)
}

func (s *GroupService) RemoveFromProject(projectID, id uint, userID string) error {
	if _, err := s.projectService.Authorize(projectID, userID, true); err != nil {
		return err
	}
	if _, err := s.loadProjectGroup(projectID, id); err != nil {
		return err
	}
	return s.db.Unscoped().Delete(&models.ProjectGroup{}, id).Error
}
