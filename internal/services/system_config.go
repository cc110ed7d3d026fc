package services

import (
	"errors"
	"strconv"

	"github.com/shiporsink/change/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where(&models.SystemConfig{Key: key}).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetInt reads an integer setting, falling back to defaultValue when the
// key is missing or not a number.
func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(s.GetWithDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where(&models.SystemConfig{Key: key}).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
			Type:  "string",
			Group: "system",
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) List() ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Order("id").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where(&models.SystemConfig{Group: group}).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateBatch sets several keys in one transaction. Only known keys are
// accepted.
func (s *SystemConfigService) UpdateBatch(values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			res := tx.Model(&models.SystemConfig{}).Where(&models.SystemConfig{Key: key}).Update("value", value)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}
