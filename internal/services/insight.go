package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

const maxInsightsPerExchange = 10

var insightCategories = map[string]bool{
	"concern":    true,
	"commitment": true,
	"risk":       true,
	"preference": true,
	"other":      true,
}

// InsightService extracts stakeholder facts from chat exchanges in the
// background and publishes them to the owner's SSE clients.
type InsightService struct {
	db      *gorm.DB
	ai      Completer
	prompts *PromptService
	hub     *SSEHub
}

func NewInsightService(db *gorm.DB, ai Completer, hub *SSEHub) *InsightService {
	return &InsightService{db: db, ai: ai, prompts: NewPromptService(db), hub: hub}
}

type InsightListRequest struct {
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	ProjectID       *uint  `form:"project_id"`
	StakeholderName string `form:"stakeholder"`
	Category        string `form:"category" binding:"omitempty,oneof=concern commitment risk preference other"`
}

type InsightListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ChatInsight `json:"items"`
}

// ExtractedInsight is one element of the extraction output.
type ExtractedInsight struct {
	Stakeholder string `json:"stakeholder"`
	Category    string `json:"category"`
	Content     string `json:"content"`
}

// Process is the TaskProcessor for insight tasks. Failures are published
// as extraction_failed events and returned for logging.
func (s *InsightService) Process(ctx context.Context, task *InsightTask) error {
	var pair []models.ChatMessage
	err := s.db.Where("user_id = ? AND id IN ?", task.UserID, []uint{task.UserMessageID, task.AssistantMessageID}).
		Order("id ASC").Find(&pair).Error
	if err != nil {
		return err
	}
	if len(pair) != 2 {
		// The conversation was cleared before the task ran.
		logger.Infof("[Insight] Messages for task %d/%d are gone, skipping", task.UserMessageID, task.AssistantMessageID)
		return nil
	}

	prompt := RenderPrompt(s.prompts.GetContent(models.PromptInsightExtraction), map[string]string{
		"user_message":      pair[0].Content,
		"assistant_message": pair[1].Content,
	})

	result, err := s.ai.Complete(ctx, &CompletionRequest{
		UserID:    task.UserID,
		ProjectID: task.ProjectID,
		Feature:   models.FeatureInsightExtraction,
		Messages:  []ChatTurn{{Role: models.ChatRoleUser, Content: prompt}},
	})
	if err != nil {
		s.publishFailure(task, err)
		return err
	}

	extracted, err := ParseExtractedInsights(result.Content)
	if err != nil {
		s.publishFailure(task, err)
		return err
	}
	if len(extracted) == 0 {
		return nil
	}

	rows := make([]models.ChatInsight, 0, len(extracted))
	for _, e := range extracted {
		rows = append(rows, models.ChatInsight{
			UserID:          task.UserID,
			ProjectID:       task.ProjectID,
			ChatMessageID:   task.AssistantMessageID,
			StakeholderName: e.Stakeholder,
			Category:        e.Category,
			Content:         e.Content,
		})
	}
	if err := s.db.Create(&rows).Error; err != nil {
		s.publishFailure(task, err)
		return err
	}

	details := make([]InsightEventDetail, len(rows))
	for i, r := range rows {
		details[i] = InsightEventDetail{ID: r.ID, StakeholderName: r.StakeholderName, Category: r.Category, Content: r.Content}
	}
	if s.hub != nil {
		s.hub.Publish(InsightEvent{
			Type:      EventInsightsExtracted,
			UserID:    task.UserID,
			ProjectID: task.ProjectID,
			MessageID: task.AssistantMessageID,
			Insights:  details,
			At:        time.Now(),
		})
	}
	logger.Infof("[Insight] Stored %d insights from message %d", len(rows), task.AssistantMessageID)
	return nil
}

func (s *InsightService) publishFailure(task *InsightTask, err error) {
	logger.Warnf("[Insight] Extraction failed for message %d: %v", task.AssistantMessageID, err)
	if s.hub == nil {
		return
	}
	s.hub.Publish(InsightEvent{
		Type:      EventExtractionFailed,
		UserID:    task.UserID,
		ProjectID: task.ProjectID,
		MessageID: task.AssistantMessageID,
		Error:     "insight extraction failed",
		At:        time.Now(),
	})
}

// ParseExtractedInsights reads the JSON array the extraction prompt asks
// for. Markdown fences and prose around the array are ignored; unknown
// categories become "other" and entries without content are dropped.
func ParseExtractedInsights(text string) ([]ExtractedInsight, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, errors.New("no JSON array in extraction output")
	}

	var raw []ExtractedInsight
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode extraction output: %w", err)
	}

	out := make([]ExtractedInsight, 0, len(raw))
	for _, e := range raw {
		e.Content = strings.TrimSpace(e.Content)
		if e.Content == "" {
			continue
		}
		e.Stakeholder = truncateRunes(strings.TrimSpace(e.Stakeholder), 200)
		e.Category = strings.ToLower(strings.TrimSpace(e.Category))
		if !insightCategories[e.Category] {
			e.Category = "other"
		}
		out = append(out, e)
		if len(out) == maxInsightsPerExchange {
			break
		}
	}
	return out, nil
}

func (s *InsightService) List(userID string, req *InsightListRequest) (*InsightListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var items []models.ChatInsight
	var total int64

	query := s.db.Model(&models.ChatInsight{}).Where("user_id = ?", userID)
	if req.ProjectID != nil {
		query = query.Where("project_id = ?", *req.ProjectID)
	}
	if req.StakeholderName != "" {
		query = query.Where("stakeholder_name LIKE ?", "%"+req.StakeholderName+"%")
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &InsightListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

func (s *InsightService) Delete(id uint, userID string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ChatInsight{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
