package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/pkg/logger"
	"gorm.io/gorm"
)

const defaultChatHistoryLimit = 20

// ChatService runs the AI coaching chat.
type ChatService struct {
	db             *gorm.DB
	ai             Completer
	queue          TaskQueue
	prompts        *PromptService
	contexts       *ContextService
	projectService *ProjectService
	configService  *SystemConfigService
}

func NewChatService(db *gorm.DB, ai Completer, queue TaskQueue) *ChatService {
	return &ChatService{
		db:             db,
		ai:             ai,
		queue:          queue,
		prompts:        NewPromptService(db),
		contexts:       NewContextService(db),
		projectService: NewProjectService(db),
		configService:  NewSystemConfigService(db),
	}
}

type SendChatRequest struct {
	ProjectID *uint  `json:"project_id"`
	Message   string `json:"message" binding:"required,max=8000"`
}

type ChatReply struct {
	UserMessage      models.ChatMessage `json:"user_message"`
	AssistantMessage models.ChatMessage `json:"assistant_message"`
}

type ChatHistoryRequest struct {
	ProjectID *uint `form:"project_id"`
	Limit     int   `form:"limit" binding:"omitempty,min=1,max=500"`
}

// scopeChat narrows a query to one conversation: a project's, or the
// general one when projectID is nil.
func scopeChat(query *gorm.DB, userID string, projectID *uint) *gorm.DB {
	query = query.Where("user_id = ?", userID)
	if projectID == nil {
		return query.Where("project_id IS NULL")
	}
	return query.Where("project_id = ?", *projectID)
}

// Send answers one user message. The exchange is stored only when the
// model answered, then insight extraction is queued. There are no retries.
func (s *ChatService) Send(ctx context.Context, userID string, req *SendChatRequest) (*ChatReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}

	projectLine := "No specific project; this is a general question."
	if req.ProjectID != nil {
		project, err := s.projectService.Authorize(*req.ProjectID, userID, false)
		if err != nil {
			return nil, err
		}
		projectLine = describeProject(project)
	}

	contextBlock, err := s.contexts.Prompt(userID)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}
	system := RenderPrompt(s.prompts.GetContent(models.PromptCoachChat), map[string]string{
		"project": projectLine,
		"context": contextBlock,
	})

	history, err := s.recent(userID, req.ProjectID, s.historyLimit())
	if err != nil {
		return nil, err
	}
	turns := make([]ChatTurn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, ChatTurn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, ChatTurn{Role: models.ChatRoleUser, Content: message})

	result, err := s.ai.Complete(ctx, &CompletionRequest{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Feature:   models.FeatureChat,
		System:    system,
		Messages:  turns,
	})
	if err != nil {
		AuditEvent{Module: "Chat", Action: "Send", Message: "chat completion failed", UserID: userID, Extra: map[string]string{"error": err.Error()}}.Error()
		return nil, err
	}

	now := time.Now()
	reply := &ChatReply{
		UserMessage:      models.ChatMessage{UserID: userID, ProjectID: req.ProjectID, Role: models.ChatRoleUser, Content: message, CreatedAt: now},
		AssistantMessage: models.ChatMessage{UserID: userID, ProjectID: req.ProjectID, Role: models.ChatRoleAssistant, Content: strings.TrimSpace(result.Content), CreatedAt: now},
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply.UserMessage).Error; err != nil {
			return err
		}
		return tx.Create(&reply.AssistantMessage).Error
	})
	if err != nil {
		return nil, fmt.Errorf("store chat messages: %w", err)
	}

	if s.queue != nil {
		task := &InsightTask{
			UserID:             userID,
			ProjectID:          req.ProjectID,
			UserMessageID:      reply.UserMessage.ID,
			AssistantMessageID: reply.AssistantMessage.ID,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Warnf("[Chat] Failed to enqueue insight extraction for message %d: %v", reply.AssistantMessage.ID, err)
		}
	}

	return reply, nil
}

func describeProject(p *models.Project) string {
	line := fmt.Sprintf("%s [%s]", p.Name, p.Status)
	if d := strings.TrimSpace(p.Description); d != "" {
		line += ": " + d
	}
	return line
}

func (s *ChatService) historyLimit() int {
	n := s.configService.GetInt("chat_history_limit", defaultChatHistoryLimit)
	if n <= 0 {
		return defaultChatHistoryLimit
	}
	return n
}

// recent returns the last limit messages of a conversation, oldest first.
func (s *ChatService) recent(userID string, projectID *uint, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := scopeChat(s.db.Model(&models.ChatMessage{}), userID, projectID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// History lists a conversation oldest first.
func (s *ChatService) History(userID string, req *ChatHistoryRequest) ([]models.ChatMessage, error) {
	if req.ProjectID != nil {
		if _, err := s.projectService.Authorize(*req.ProjectID, userID, false); err != nil {
			return nil, err
		}
	}
	limit := req.Limit
	if limit == 0 {
		limit = 200
	}
	messages, err := s.recent(userID, req.ProjectID, limit)
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, err
}

// Clear deletes one conversation of the user.
func (s *ChatService) Clear(userID string, projectID *uint) (int64, error) {
	result := scopeChat(s.db, userID, projectID).Delete(&models.ChatMessage{})
	return result.RowsAffected, result.Error
}

// CleanupBefore deletes chat messages older than before.
func (s *ChatService) CleanupBefore(before time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", before).Delete(&models.ChatMessage{})
	return result.RowsAffected, result.Error
}
