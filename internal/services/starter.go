package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

// StarterService generates conversation starters for one project
// stakeholder and saves chosen ones as scripts.
type StarterService struct {
	db             *gorm.DB
	ai             Completer
	prompts        *PromptService
	stakeholders   *StakeholderService
	projectService *ProjectService
	scripts        *ScriptService
}

func NewStarterService(db *gorm.DB, ai Completer) *StarterService {
	return &StarterService{
		db:             db,
		ai:             ai,
		prompts:        NewPromptService(db),
		stakeholders:   NewStakeholderService(db),
		projectService: NewProjectService(db),
		scripts:        NewScriptService(db),
	}
}

// StarterResponse always carries the raw model output so the client can
// show it when nothing could be parsed.
type StarterResponse struct {
	Starters []insights.Starter   `json:"starters"`
	Raw      string               `json:"raw"`
	Rollup   insights.ADKARRollup `json:"adkar"`
}

type SaveStarterRequest struct {
	Phrase      string `json:"phrase" binding:"required"`
	Explanation string `json:"explanation"`
	Category    string `json:"category" binding:"omitempty,oneof=opener objection question follow_up empathy motivation closing"`
}

func (s *StarterService) Generate(ctx context.Context, projectID, linkID uint, userID string) (*StarterResponse, error) {
	project, err := s.projectService.Authorize(projectID, userID, false)
	if err != nil {
		return nil, err
	}
	link, err := s.stakeholders.loadLink(projectID, linkID)
	if err != nil {
		return nil, err
	}

	rollup := insights.Rollup(link.Scores())
	prompt := RenderPrompt(s.prompts.GetContent(models.PromptConversationStarters), starterVars(project, link, rollup))

	result, err := s.ai.Complete(ctx, &CompletionRequest{
		UserID:    userID,
		ProjectID: &projectID,
		Feature:   models.FeatureStarters,
		Messages:  []ChatTurn{{Role: models.ChatRoleUser, Content: prompt}},
	})
	if err != nil {
		AuditEvent{Module: "Starters", Action: "Generate", Message: "conversation starter generation failed", UserID: userID, Extra: map[string]string{"error": err.Error()}}.Error()
		return nil, err
	}

	return &StarterResponse{
		Starters: insights.ParseStarters(result.Content),
		Raw:      result.Content,
		Rollup:   rollup,
	}, nil
}

func starterVars(project *models.Project, link *models.ProjectStakeholder, rollup insights.ADKARRollup) map[string]string {
	name, role := "Unknown stakeholder", "role not recorded"
	if link.Stakeholder != nil {
		name = link.Stakeholder.Name
		if link.Stakeholder.Role != "" {
			role = link.Stakeholder.Role
		}
	}
	notes := strings.TrimSpace(link.Notes)
	if notes == "" {
		notes = "none"
	}

	scores := link.Scores()
	parts := make([]string, len(insights.Stages))
	for i, stage := range insights.Stages {
		parts[i] = fmt.Sprintf("%s %d", stage, scores.Score(stage))
	}

	return map[string]string{
		"stakeholder":      name,
		"role":             role,
		"project":          project.Name,
		"stakeholder_type": insights.TypeLabel(link.StakeholderType),
		"adkar":            fmt.Sprintf("%s (average %d)", strings.Join(parts, ", "), rollup.Average),
		"bottleneck":       fmt.Sprintf("%s (%d)", rollup.BottleneckStage, rollup.BottleneckScore),
		"notes":            notes,
	}
}

// Save stores a starter in the caller's script library, tagged with the
// suggested category unless one is given, and with the stakeholder's type.
func (s *StarterService) Save(projectID, linkID uint, userID string, req *SaveStarterRequest) (*models.ConversationScript, error) {
	link, err := s.stakeholders.GetLink(projectID, linkID, userID)
	if err != nil {
		return nil, err
	}
	return s.scripts.Create(userID, &CreateScriptRequest{
		Content:         req.Phrase,
		Explanation:     req.Explanation,
		Category:        req.Category,
		StakeholderType: link.StakeholderType,
	})
}
