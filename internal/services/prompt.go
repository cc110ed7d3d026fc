package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

type PromptListParams struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	IsSystem *bool  `form:"is_system"`
}

type PromptListResult struct {
	Items []models.PromptTemplate `json:"items"`
	Total int64                   `json:"total"`
}

type CreatePromptRequest struct {
	Key         string `json:"key" binding:"required,max=100"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Content     string `json:"content" binding:"required"`
}

type UpdatePromptRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Content     *string `json:"content" binding:"omitempty,min=1"`
}

func (s *PromptService) List(params PromptListParams) (*PromptListResult, error) {
	if params.Page == 0 {
		params.Page = 1
	}
	if params.PageSize == 0 {
		params.PageSize = 20
	}

	var prompts []models.PromptTemplate
	var total int64

	query := s.db.Model(&models.PromptTemplate{})

	if params.Name != "" {
		query = query.Where("name LIKE ?", "%"+params.Name+"%")
	}
	if params.IsSystem != nil {
		query = query.Where("is_system = ?", *params.IsSystem)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.PageSize
	if err := query.Offset(offset).Limit(params.PageSize).Order("is_system DESC, id ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	return &PromptListResult{
		Items: prompts,
		Total: total,
	}, nil
}

func (s *PromptService) GetByID(id uint) (*models.PromptTemplate, error) {
	var prompt models.PromptTemplate
	if err := s.db.First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prompt, nil
}

// GetContent returns the template text for key. A missing or deleted row
// falls back to the built-in default so the AI features keep working.
func (s *PromptService) GetContent(key string) string {
	var prompt models.PromptTemplate
	if err := s.db.Where(&models.PromptTemplate{Key: key}).First(&prompt).Error; err == nil && strings.TrimSpace(prompt.Content) != "" {
		return prompt.Content
	}
	logger.Warnf("[Prompt] Template %s not found, using built-in default", key)
	if def := models.DefaultPromptByKey(key); def != nil {
		return def.Content
	}
	return ""
}

func (s *PromptService) Create(userID string, req *CreatePromptRequest) (*models.PromptTemplate, error) {
	var count int64
	s.db.Model(&models.PromptTemplate{}).Where(&models.PromptTemplate{Key: req.Key}).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: prompt key %q already exists", ErrInvalidInput, req.Key)
	}

	prompt := &models.PromptTemplate{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Variables:   variablesJSON(req.Content),
		UpdatedBy:   userID,
	}
	// User-created prompts are not system prompts
	if err := s.db.Create(prompt).Error; err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) Update(id uint, userID string, req *UpdatePromptRequest) (*models.PromptTemplate, error) {
	prompt, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_by": userID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Content != nil {
		updates["content"] = *req.Content
		updates["variables"] = variablesJSON(*req.Content)
	}

	if err := s.db.Model(prompt).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Reset restores a system prompt to its built-in content.
func (s *PromptService) Reset(id uint, userID string) (*models.PromptTemplate, error) {
	prompt, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	def := models.DefaultPromptByKey(prompt.Key)
	if def == nil {
		return nil, fmt.Errorf("%w: prompt %q has no built-in default", ErrInvalidInput, prompt.Key)
	}
	err = s.db.Model(prompt).Updates(map[string]interface{}{
		"content":    def.Content,
		"variables":  def.Variables,
		"updated_by": userID,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *PromptService) Delete(id uint) error {
	prompt, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if prompt.IsSystem {
		return fmt.Errorf("%w: system prompts cannot be deleted", ErrForbidden)
	}
	return s.db.Delete(&models.PromptTemplate{}, id).Error
}

// RenderPrompt replaces {{name}} placeholders with vars. Unknown
// placeholders are replaced with an empty string.
func RenderPrompt(content string, vars map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(content, func(m string) string {
		name := placeholderRegex.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

// PromptVariables lists the distinct placeholder names in content, in order.
func PromptVariables(content string) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range placeholderRegex.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func variablesJSON(content string) string {
	names := PromptVariables(content)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
