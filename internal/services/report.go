package services

import (
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

type ReportService struct {
	db             *gorm.DB
	projectService *ProjectService
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, projectService: NewProjectService(db)}
}

type ProjectReport struct {
	Project models.Project `json:"project"`
	insights.Report
}

// ProjectReport derives stage, trend and type distribution for every
// stakeholder of a project.
func (s *ReportService) ProjectReport(projectID uint, userID string) (*ProjectReport, error) {
	project, err := s.projectService.Authorize(projectID, userID, false)
	if err != nil {
		return nil, err
	}

	var links []models.ProjectStakeholder
	if err := s.db.Preload("Stakeholder").Where("project_id = ?", projectID).Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}

	history := make(map[uint][]insights.HistoryPoint, len(links))
	if len(links) > 0 {
		ids := make([]uint, len(links))
		for i := range links {
			ids[i] = links[i].ID
		}
		var rows []models.ScoreHistory
		if err := s.db.Where("project_stakeholder_id IN ?", ids).Order("recorded_at ASC, id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, h := range rows {
			history[h.ProjectStakeholderID] = append(history[h.ProjectStakeholderID], insights.HistoryPoint{
				EngagementScore:  h.EngagementScore,
				PerformanceScore: h.PerformanceScore,
				RecordedAt:       h.RecordedAt,
			})
		}
	}

	inputs := make([]insights.ReportInput, len(links))
	for i := range links {
		l := &links[i]
		inputs[i] = insights.ReportInput{
			ProjectStakeholderID: l.ID,
			Name:                 stakeholderName(l),
			StakeholderType:      l.StakeholderType,
			ADKAR:                l.Scores(),
			EngagementScore:      l.EngagementScore,
			PerformanceScore:     l.PerformanceScore,
			History:              history[l.ID],
		}
	}

	return &ProjectReport{Project: *project, Report: insights.BuildReport(inputs)}, nil
}
