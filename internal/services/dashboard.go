package services

import (
	"math"
	"time"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

type DashboardService struct {
	db               *gorm.DB
	projectService   *ProjectService
	milestoneService *MilestoneService
}

func NewDashboardService(db *gorm.DB, holidays *HolidayService) *DashboardService {
	return &DashboardService{
		db:               db,
		projectService:   NewProjectService(db),
		milestoneService: NewMilestoneService(db, holidays),
	}
}

// StakeholderRollup is one stakeholder card of the project dashboard.
type StakeholderRollup struct {
	ProjectStakeholderID uint                 `json:"project_stakeholder_id"`
	Name                 string               `json:"name"`
	Role                 string               `json:"role"`
	StakeholderType      string               `json:"stakeholder_type"`
	EngagementScore      int                  `json:"engagement_score"`
	PerformanceScore     int                  `json:"performance_score"`
	ADKAR                insights.ADKARScores `json:"adkar_scores"`
	Rollup               insights.ADKARRollup `json:"adkar"`
}

type ProjectDashboard struct {
	Project      models.Project             `json:"project"`
	Summary      insights.EngagementSummary `json:"summary"`
	Stakeholders []StakeholderRollup        `json:"stakeholders"`
	Milestones   MilestoneCounts            `json:"milestones"`
	NextUp       []models.Milestone         `json:"next_milestones"`
}

// ProjectOverview is one line of the cross-project dashboard.
type ProjectOverview struct {
	ProjectID        uint            `json:"project_id"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	Role             string          `json:"role"`
	StakeholderCount int             `json:"stakeholder_count"`
	EngagementLevel  int             `json:"engagement_level"`
	RiskAssessment   int             `json:"risk_assessment"`
	Milestones       MilestoneCounts `json:"milestones"`
}

type DashboardOverview struct {
	Projects          []ProjectOverview `json:"projects"`
	ActiveProjects    int               `json:"active_projects"`
	TotalStakeholders int64             `json:"total_stakeholders"`
	AverageEngagement int               `json:"average_engagement"`
}

// overviewPageSize is how many projects Overview loads per query.
const overviewPageSize = 100

func (s *DashboardService) projectLinks(projectID uint) ([]models.ProjectStakeholder, error) {
	var links []models.ProjectStakeholder
	err := s.db.Preload("Stakeholder").Where("project_id = ?", projectID).Order("id ASC").Find(&links).Error
	return links, err
}

func stakeholderName(link *models.ProjectStakeholder) string {
	if link.Stakeholder != nil {
		return link.Stakeholder.Name
	}
	return ""
}

func engagementRows(links []models.ProjectStakeholder) []insights.EngagementRow {
	rows := make([]insights.EngagementRow, len(links))
	for i := range links {
		rows[i] = insights.EngagementRow{
			Name:             stakeholderName(&links[i]),
			EngagementScore:  links[i].EngagementScore,
			PerformanceScore: links[i].PerformanceScore,
		}
	}
	return rows
}

// ProjectDashboard returns engagement, ADKAR rollups and milestone
// progress for one project.
func (s *DashboardService) ProjectDashboard(projectID uint, userID string) (*ProjectDashboard, error) {
	project, err := s.projectService.Authorize(projectID, userID, false)
	if err != nil {
		return nil, err
	}

	links, err := s.projectLinks(projectID)
	if err != nil {
		return nil, err
	}
	cards := make([]StakeholderRollup, len(links))
	for i := range links {
		l := &links[i]
		role := ""
		if l.Stakeholder != nil {
			role = l.Stakeholder.Role
		}
		cards[i] = StakeholderRollup{
			ProjectStakeholderID: l.ID,
			Name:                 stakeholderName(l),
			Role:                 role,
			StakeholderType:      l.StakeholderType,
			EngagementScore:      l.EngagementScore,
			PerformanceScore:     l.PerformanceScore,
			ADKAR:                l.Scores(),
			Rollup:               insights.Rollup(l.Scores()),
		}
	}

	next := []models.Milestone{}
	err = s.db.Where("project_id = ? AND status <> ? AND date >= ?", projectID, models.MilestoneCompleted, time.Now().Truncate(24*time.Hour)).
		Order("date ASC").Limit(5).Find(&next).Error
	if err != nil {
		return nil, err
	}
	counts, err := s.milestoneService.Counts(projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectDashboard{
		Project:      *project,
		Summary:      insights.Aggregate(engagementRows(links)),
		Stakeholders: cards,
		Milestones:   counts,
		NextUp:       next,
	}, nil
}

// visibleProjects pages through every project the user owns or was
// invited to.
func (s *DashboardService) visibleProjects(userID string) ([]ProjectItem, error) {
	var all []ProjectItem
	for page := 1; ; page++ {
		list, err := s.projectService.List(userID, &ProjectListRequest{Page: page, PageSize: overviewPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, list.Items...)
		if len(list.Items) < overviewPageSize || int64(len(all)) >= list.Total {
			return all, nil
		}
	}
}

// Overview summarises every project visible to the user.
func (s *DashboardService) Overview(userID string) (*DashboardOverview, error) {
	projects, err := s.visibleProjects(userID)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{Projects: make([]ProjectOverview, 0, len(projects))}
	var engagementTotal, withStakeholders int
	for _, p := range projects {
		links, err := s.projectLinks(p.ID)
		if err != nil {
			return nil, err
		}
		counts, err := s.milestoneService.Counts(p.ID)
		if err != nil {
			return nil, err
		}
		summary := insights.Aggregate(engagementRows(links))
		overview.Projects = append(overview.Projects, ProjectOverview{
			ProjectID:        p.ID,
			Name:             p.Name,
			Status:           p.Status,
			Role:             p.Role,
			StakeholderCount: len(links),
			EngagementLevel:  summary.EngagementLevel,
			RiskAssessment:   summary.RiskAssessment,
			Milestones:       counts,
		})
		if p.Status == models.ProjectStatusActive {
			overview.ActiveProjects++
		}
		if len(links) > 0 {
			engagementTotal += summary.EngagementLevel
			withStakeholders++
		}
	}

	err = s.db.Model(&models.GlobalStakeholder{}).Where("user_id = ?", userID).Count(&overview.TotalStakeholders).Error
	if err != nil {
		return nil, err
	}
	if withStakeholders > 0 {
		overview.AverageEngagement = int(math.Round(float64(engagementTotal) / float64(withStakeholders)))
	}
	return overview, nil
}
