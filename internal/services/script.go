package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

// ScriptService keeps the user's library of conversation scripts.
type ScriptService struct {
	db *gorm.DB
}

func NewScriptService(db *gorm.DB) *ScriptService {
	return &ScriptService{db: db}
}

type ScriptListRequest struct {
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Category        string `form:"category" binding:"omitempty,oneof=opener objection question follow_up empathy motivation closing"`
	StakeholderType string `form:"stakeholder_type" binding:"omitempty,stakeholder_type"`
	Search          string `form:"search"`
	Sort            string `form:"sort" binding:"omitempty,oneof=recent popular"`
}

type ScriptListResponse struct {
	Total    int64                       `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"page_size"`
	Items    []models.ConversationScript `json:"items"`
}

// CreateScriptRequest also serves for saving a generated starter: when
// Category is empty the tag is suggested from the phrase.
type CreateScriptRequest struct {
	Title           string `json:"title" binding:"max=200"`
	Content         string `json:"content" binding:"required"`
	Explanation     string `json:"explanation"`
	Category        string `json:"category" binding:"omitempty,oneof=opener objection question follow_up empathy motivation closing"`
	StakeholderType string `json:"stakeholder_type" binding:"omitempty,stakeholder_type"`
}

type UpdateScriptRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=200"`
	Content         *string `json:"content" binding:"omitempty,min=1"`
	Explanation     *string `json:"explanation"`
	Category        *string `json:"category" binding:"omitempty,oneof=opener objection question follow_up empathy motivation closing"`
	StakeholderType *string `json:"stakeholder_type" binding:"omitempty,stakeholder_type"`
}

func (s *ScriptService) List(userID string, req *ScriptListRequest) (*ScriptListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var items []models.ConversationScript
	var total int64

	query := s.db.Model(&models.ConversationScript{}).Where("user_id = ?", userID)
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.StakeholderType != "" {
		query = query.Where("stakeholder_type = ?", req.StakeholderType)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	query.Count(&total)

	order := "created_at DESC, id DESC"
	if req.Sort == "popular" {
		order = "usage_count DESC, id DESC"
	}
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order(order).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ScriptListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

func (s *ScriptService) Get(id uint, userID string) (*models.ConversationScript, error) {
	var script models.ConversationScript
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&script).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &script, nil
}

func (s *ScriptService) Create(userID string, req *CreateScriptRequest) (*models.ConversationScript, error) {
	content := strings.TrimSpace(req.Content)
	category := req.Category
	if category == "" {
		category = insights.SuggestTag(content, req.Explanation)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = truncateRunes(content, 60)
	}

	script := models.ConversationScript{
		UserID:          userID,
		Title:           title,
		Content:         content,
		Explanation:     req.Explanation,
		Category:        category,
		StakeholderType: req.StakeholderType,
	}
	if err := s.db.Create(&script).Error; err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *ScriptService) Update(id uint, userID string, req *UpdateScriptRequest) (*models.ConversationScript, error) {
	script, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = strings.TrimSpace(*req.Content)
	}
	if req.Explanation != nil {
		updates["explanation"] = *req.Explanation
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.StakeholderType != nil {
		updates["stakeholder_type"] = *req.StakeholderType
	}
	if len(updates) > 0 {
		if err := s.db.Model(script).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(id, userID)
}

func (s *ScriptService) Delete(id uint, userID string) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}
	return s.db.Delete(&models.ConversationScript{}, id).Error
}

// Use bumps the usage counter of a script.
func (s *ScriptService) Use(id uint, userID string) (*models.ConversationScript, error) {
	script, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	err = s.db.Model(script).Updates(map[string]interface{}{
		"usage_count":  gorm.Expr("usage_count + ?", 1),
		"last_used_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(id, userID)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
