package services

import (
	"errors"
	"fmt"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/gorm"
)

type LLMConfigService struct {
	db *gorm.DB
}

func NewLLMConfigService(db *gorm.DB) *LLMConfigService {
	return &LLMConfigService{db: db}
}

type LLMConfigListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Provider string `form:"provider"`
	IsActive *bool  `form:"is_active"`
}

type LLMConfigListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.LLMConfig `json:"items"`
}

type CreateLLMConfigRequest struct {
	Name        string  `json:"name" binding:"required"`
	Provider    string  `json:"provider" binding:"omitempty,oneof=openai azure anthropic ollama gemini"`
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model" binding:"required"`
	MaxTokens   int     `json:"max_tokens" binding:"omitempty,min=1"`
	Temperature float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	Priority    *int    `json:"priority"`
	IsDefault   bool    `json:"is_default"`
	IsActive    bool    `json:"is_active"`
}

type UpdateLLMConfigRequest struct {
	Name        string   `json:"name"`
	Provider    string   `json:"provider" binding:"omitempty,oneof=openai azure anthropic ollama gemini"`
	BaseURL     string   `json:"base_url"`
	APIKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,min=1"`
	Temperature *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	Priority    *int     `json:"priority"`
	IsDefault   *bool    `json:"is_default"`
	IsActive    *bool    `json:"is_active"`
}

// List returns LLM configs in the order the AI service tries them.
func (s *LLMConfigService) List(req *LLMConfigListRequest) (*LLMConfigListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 10
	}

	query := s.db.Model(&models.LLMConfig{})
	if req.Name != "" {
		like := "%" + req.Name + "%"
		query = query.Where("name LIKE ? OR model LIKE ?", like, like)
	}
	if req.Provider != "" {
		query = query.Where("provider = ?", req.Provider)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	resp := &LLMConfigListResponse{Page: page, PageSize: pageSize}
	if err := query.Count(&resp.Total).Error; err != nil {
		return nil, err
	}
	err := query.Order(models.LLMConfigOrder).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&resp.Items).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *LLMConfigService) GetByID(id uint) (*models.LLMConfig, error) {
	var cfg models.LLMConfig
	if err := s.db.First(&cfg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// clearDefault unsets is_default on every config except keep.
func clearDefault(tx *gorm.DB, keep uint) error {
	return tx.Model(&models.LLMConfig{}).
		Where("is_default = ? AND id <> ?", true, keep).
		Update("is_default", false).Error
}

// Create stores a config. Only one config can be the default, so
// flagging a new one unsets the previous default in the same transaction.
func (s *LLMConfigService) Create(req *CreateLLMConfigRequest) (*models.LLMConfig, error) {
	provider := req.Provider
	if provider == "" {
		provider = models.ProviderOpenAI
	}
	if req.APIKey == "" && provider != models.ProviderOllama {
		return nil, fmt.Errorf("%w: api_key is required for provider %s", ErrInvalidInput, provider)
	}

	cfg := models.LLMConfig{
		Name:        req.Name,
		Provider:    provider,
		BaseURL:     req.BaseURL,
		APIKey:      req.APIKey,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Priority:    100,
		IsDefault:   req.IsDefault,
		IsActive:    req.IsActive,
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if req.Priority != nil {
		cfg.Priority = *req.Priority
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cfg).Error; err != nil {
			return err
		}
		if cfg.IsDefault {
			return clearDefault(tx, cfg.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// is_active=false needs an explicit write because the column defaults to true
	if !req.IsActive {
		if err := s.db.Model(&cfg).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(cfg.ID)
}

// Update applies the non-empty fields of req. An empty api_key keeps the
// stored key, since clients only ever see the mask.
func (s *LLMConfigService) Update(id uint, req *UpdateLLMConfigRequest) (*models.LLMConfig, error) {
	cfg, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]string{
		"name":     req.Name,
		"provider": req.Provider,
		"base_url": req.BaseURL,
		"api_key":  req.APIKey,
		"model":    req.Model,
	} {
		if value != "" {
			updates[column] = value
		}
	}
	if req.MaxTokens != nil {
		updates["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		updates["temperature"] = *req.Temperature
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := clearDefault(tx, id); err != nil {
				return err
			}
		}
		return tx.Model(cfg).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *LLMConfigService) Delete(id uint) error {
	result := s.db.Delete(&models.LLMConfig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActive returns the configs the AI service will try, in order.
func (s *LLMConfigService) GetActive() ([]models.LLMConfig, error) {
	var configs []models.LLMConfig
	err := s.db.Where("is_active = ?", true).Order(models.LLMConfigOrder).Find(&configs).Error
	return configs, err
}
