package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shiporsink/change/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"github.com/shiporsink/change/internal/config"
	"github.com/shiporsink/change/internal/models"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

// ChatTurn is one prior message passed to the model.
type ChatTurn struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// CompletionRequest is a single LLM call. System is sent through each
// provider's native system-prompt channel.
type CompletionRequest struct {
	UserID    string
	ProjectID *uint
	Feature   string
	System    string
	Messages  []ChatTurn
}

type CompletionResult struct {
	Content          string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Completer is satisfied by AIService; services that call the model depend
// on it so they can be exercised without a network.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

type AIService struct {
	db           *gorm.DB
	config       *config.OpenAIConfig
	usageService *AIUsageService
}

func NewAIService(db *gorm.DB, cfg *config.OpenAIConfig) *AIService {
	return &AIService{
		db:           db,
		config:       cfg,
		usageService: NewAIUsageService(db),
	}
}

// Complete tries every active LLM config in order and returns the first
// successful answer. Each attempt is recorded in ai_usage_logs.
func (s *AIService) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	llmConfigs := s.getOrderedLLMConfigs()
	if len(llmConfigs) == 0 {
		return nil, fmt.Errorf("%w: no LLM configuration available", ErrAIUnavailable)
	}

	logger.Infof("[AI] %s request: system %d chars, %d messages", req.Feature, len(req.System), len(req.Messages))

	var lastErr error
	for i, llmConfig := range llmConfigs {
		logger.Infof("[AI] Attempting LLM %d/%d: %s (model: %s)", i+1, len(llmConfigs), llmConfig.Name, llmConfig.Model)

		start := time.Now()
		result, err := s.callLLM(ctx, &llmConfig, req)
		s.recordUsage(req, &llmConfig, result, err, time.Since(start))
		if err == nil {
			logger.Infof("[AI] Success with LLM: %s", llmConfig.Name)
			return result, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Warnf("[AI] LLM %s failed: %v, trying next...", llmConfig.Name, err)
	}

	return nil, fmt.Errorf("%w: all LLMs failed, last error: %v", ErrAIUnavailable, lastErr)
}

// getOrderedLLMConfigs returns the default config first, then the other
// active configs by ascending priority. With nothing configured it falls
// back to the openai section of the config file.
func (s *AIService) getOrderedLLMConfigs() []models.LLMConfig {
	var configs []models.LLMConfig
	s.db.Where("is_active = ?", true).Order(models.LLMConfigOrder).Find(&configs)

	if len(configs) == 0 && s.config != nil && s.config.APIKey != "" {
		configs = append(configs, models.LLMConfig{
			Name:     "fallback",
			Provider: models.ProviderOpenAI,
			BaseURL:  s.config.BaseURL,
			APIKey:   s.config.APIKey,
			Model:    s.config.Model,
		})
	}

	return configs
}

func (s *AIService) recordUsage(req *CompletionRequest, llmConfig *models.LLMConfig, result *CompletionResult, err error, latency time.Duration) {
	entry := &models.AIUsageLog{
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		Feature:     req.Feature,
		LLMConfigID: llmConfig.ID,
		Provider:    providerName(llmConfig.Provider),
		Model:       llmConfig.Model,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
	}
	if result != nil {
		entry.PromptTokens = result.PromptTokens
		entry.CompletionTokens = result.CompletionTokens
		entry.TotalTokens = result.PromptTokens + result.CompletionTokens
	}
	if err != nil {
		msg := err.Error()
		if len(msg) > 500 {
			msg = msg[:500]
		}
		entry.ErrorMessage = msg
	}
	s.usageService.Record(entry)
}

func providerName(p string) string {
	if p == "" {
		return models.ProviderOpenAI
	}
	return p
}

// callLLM dispatches to the appropriate provider-specific function based on Provider field
func (s *AIService) callLLM(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	logger.Infof("[AI] Using provider: %s, model: %s, baseURL: %s", llmConfig.Provider, llmConfig.Model, llmConfig.BaseURL)

	var (
		result *CompletionResult
		err    error
	)
	switch llmConfig.Provider {
	case models.ProviderAnthropic:
		result, err = s.callAnthropic(ctx, llmConfig, req)
	case models.ProviderOllama:
		result, err = s.callOllama(ctx, llmConfig, req)
	case models.ProviderGemini:
		result, err = s.callGemini(ctx, llmConfig, req)
	case models.ProviderAzure:
		result, err = s.callAzure(ctx, llmConfig, req)
	default:
		// openai and other OpenAI-compatible services
		result, err = s.callOpenAI(ctx, llmConfig, req)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, errors.New("empty response")
	}
	result.Provider = providerName(llmConfig.Provider)
	result.Model = llmConfig.Model
	return result, nil
}

func openAIMessages(req *CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return messages
}

func temperatureOf(llmConfig *models.LLMConfig) float32 {
	if llmConfig.Temperature > 0 {
		return float32(llmConfig.Temperature)
	}
	return 0.7
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (s *AIService) callOpenAI(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)
	return s.createChatCompletion(ctx, client, "OpenAI", llmConfig, req)
}

// callAzure handles Azure OpenAI. BaseURL is https://{resource}.openai.azure.com
// and Model is the deployment name.
func (s *AIService) callAzure(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	client := openai.NewClientWithConfig(openai.DefaultAzureConfig(llmConfig.APIKey, llmConfig.BaseURL))
	return s.createChatCompletion(ctx, client, "Azure OpenAI", llmConfig, req)
}

func (s *AIService) createChatCompletion(ctx context.Context, client *openai.Client, name string, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       llmConfig.Model,
		Messages:    openAIMessages(req),
		Temperature: temperatureOf(llmConfig),
	}
	if llmConfig.MaxTokens > 0 {
		chatReq.MaxTokens = llmConfig.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		logger.Infof("[AI] %s API error: %v", name, err)
		return nil, fmt.Errorf("%s API error: %w", name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", name)
	}

	content := resp.Choices[0].Message.Content
	logger.Infof("[AI] %s response length: %d chars", name, len(content))

	return &CompletionResult{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// callAnthropic handles Anthropic Claude API using the native SDK
func (s *AIService) callAnthropic(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	opts := []option.RequestOption{option.WithAPIKey(llmConfig.APIKey)}
	if llmConfig.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(llmConfig.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(llmConfig.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	model := llmConfig.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == models.ChatRoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(float64(temperatureOf(llmConfig))),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		logger.Infof("[AI] Anthropic API error: %v", err)
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	logger.Infof("[AI] Anthropic response length: %d chars", len(content))

	return &CompletionResult{
		Content:          content,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// callOllama handles Ollama API using the native SDK
func (s *AIService) callOllama(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	baseURL := llmConfig.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := llmConfig.Model
	if model == "" {
		model = "llama3"
	}

	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	var (
		content strings.Builder
		result  CompletionResult
	)
	err = client.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Options: map[string]interface{}{
			"temperature": temperatureOf(llmConfig),
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			result.PromptTokens = resp.PromptEvalCount
			result.CompletionTokens = resp.EvalCount
		}
		return nil
	})

	if err != nil {
		logger.Infof("[AI] Ollama API error: %v", err)
		return nil, fmt.Errorf("Ollama API error: %w", err)
	}

	result.Content = content.String()
	logger.Infof("[AI] Ollama response length: %d chars", len(result.Content))

	return &result, nil
}

// callGemini handles Google Gemini API using the native SDK
func (s *AIService) callGemini(ctx context.Context, llmConfig *models.LLMConfig, req *CompletionRequest) (*CompletionResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  llmConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini client error: %w", err)
	}

	model := llmConfig.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == models.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperatureOf(llmConfig)),
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		logger.Infof("[AI] Gemini API error: %v", err)
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	result := &CompletionResult{Content: resp.Text()}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	logger.Infof("[AI] Gemini response length: %d chars", len(result.Content))

	return result, nil
}
