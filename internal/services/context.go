package services

import (
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

// ContextService assembles what the coach knows about a user's
// organisation across all of their projects.
type ContextService struct {
	db *gorm.DB
}

func NewContextService(db *gorm.DB) *ContextService {
	return &ContextService{db: db}
}

// Build loads every row owned by userID and runs the context builder.
// Only the user's own projects are included; shared projects belong to
// someone else's organisation.
func (s *ContextService) Build(userID string) (*insights.CrossProjectContext, error) {
	in, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	ctx := insights.BuildContext(*in)
	return &ctx, nil
}

// Prompt renders the context as the text block handed to the LLM.
func (s *ContextService) Prompt(userID string) (string, error) {
	ctx, err := s.Build(userID)
	if err != nil {
		return "", err
	}
	return ctx.RenderPrompt(), nil
}

func (s *ContextService) load(userID string) (*insights.ContextInput, error) {
	var projects []models.Project
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	var stakeholders []models.GlobalStakeholder
	if err := s.db.Preload("Group").Where("user_id = ?", userID).Order("id ASC").Find(&stakeholders).Error; err != nil {
		return nil, err
	}
	var groups []models.StakeholderGroup
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	in := &insights.ContextInput{
		Projects:          make([]insights.Project, len(projects)),
		Stakeholders:      make([]insights.Stakeholder, len(stakeholders)),
		Groups:            make([]insights.Group, len(groups)),
		StakeholderScores: []insights.StakeholderScore{},
		GroupScores:       []insights.GroupScore{},
	}
	projectIDs := make([]uint, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
		in.Projects[i] = insights.Project{ID: p.ID, Name: p.Name, Status: p.Status}
	}
	for i, sh := range stakeholders {
		groupName := ""
		if sh.Group != nil {
			groupName = sh.Group.Name
		}
		in.Stakeholders[i] = insights.Stakeholder{
			ID:          sh.ID,
			Name:        sh.Name,
			Role:        sh.Role,
			Department:  sh.Department,
			GroupID:     sh.GroupID,
			GroupName:   groupName,
			IsMe:        sh.IsMe,
			ReportsToID: sh.ReportsToID,
		}
	}
	for i, g := range groups {
		in.Groups[i] = insights.Group{ID: g.ID, Name: g.Name}
	}

	if len(projectIDs) == 0 {
		return in, nil
	}

	var links []models.ProjectStakeholder
	if err := s.db.Where("project_id IN ?", projectIDs).Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		in.StakeholderScores = append(in.StakeholderScores, insights.StakeholderScore{
			ProjectID:       l.ProjectID,
			StakeholderID:   l.GlobalStakeholderID,
			StakeholderType: l.StakeholderType,
			ADKAR:           l.Scores(),
			EngagementScore: l.EngagementScore,
			Notes:           l.Notes,
		})
	}

	var projectGroups []models.ProjectGroup
	if err := s.db.Where("project_id IN ?", projectIDs).Order("id ASC").Find(&projectGroups).Error; err != nil {
		return nil, err
	}
	for _, pg := range projectGroups {
		in.GroupScores = append(in.GroupScores, insights.GroupScore{
			ProjectID: pg.ProjectID,
			GroupID:   pg.GroupID,
			ADKAR:     pg.Scores(),
			Sentiment: pg.Sentiment,
			Notes:     pg.Notes,
		})
	}

	return in, nil
}
