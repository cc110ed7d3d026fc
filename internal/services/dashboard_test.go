package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

func linkStakeholder(t *testing.T, db *gorm.DB, projectID uint, name string, req AddProjectStakeholderRequest) *models.ProjectStakeholder {
	t.Helper()
	svc := NewStakeholderService(db)
	sh, err := svc.Create(testUser, &CreateStakeholderRequest{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	req.GlobalStakeholderID = sh.ID
	link, err := svc.AddToProject(projectID, testUser, &req)
	if err != nil {
		t.Fatal(err)
	}
	return link
}

func TestProjectDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, nil)
	project := createProject(t, db, testUser, "ERP")

	linkStakeholder(t, db, project.ID, "Ana", AddProjectStakeholderRequest{
		Awareness: 80, Desire: 20, Knowledge: 60, Ability: 40, Reinforcement: 50,
		EngagementScore: 70, PerformanceScore: 60,
	})
	linkStakeholder(t, db, project.ID, "Bo", AddProjectStakeholderRequest{EngagementScore: 35})

	d, err := svc.ProjectDashboard(project.ID, testUser)
	if err != nil {
		t.Fatal(err)
	}
	// mean(70, 35) = 52.5 rounds half away from zero
	if d.Summary.EngagementLevel != 53 || d.Summary.RiskAssessment != 47 {
		t.Errorf("summary = %+v", d.Summary)
	}
	if len(d.Stakeholders) != 2 {
		t.Fatalf("stakeholders = %d", len(d.Stakeholders))
	}
	ana := d.Stakeholders[0]
	if ana.Name != "Ana" || ana.Rollup.Average != 50 || ana.Rollup.BottleneckStage != insights.StageDesire {
		t.Errorf("ana card = %+v", ana)
	}
	if d.Stakeholders[1].Rollup.BottleneckStage != insights.StageAwareness {
		t.Errorf("all-zero bottleneck = %q, want Awareness", d.Stakeholders[1].Rollup.BottleneckStage)
	}

	if _, err := svc.ProjectDashboard(project.ID, otherUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger error = %v", err)
	}
}

func TestProjectDashboardEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, nil)
	project := createProject(t, db, testUser, "Empty")

	d, err := svc.ProjectDashboard(project.ID, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if d.Summary.EngagementLevel != 0 || d.Summary.RiskAssessment != 0 || len(d.Summary.Breakdown) != 0 {
		t.Errorf("empty summary = %+v", d.Summary)
	}
	if d.Stakeholders == nil || d.NextUp == nil {
		t.Error("empty lists should not be nil")
	}
}

func TestDashboardOverview(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, nil)
	a := createProject(t, db, testUser, "A")
	b := createProject(t, db, testUser, "B")
	createProject(t, db, testUser, "C")
	NewProjectService(db).Update(b.ID, testUser, &UpdateProjectRequest{Status: strPtr(models.ProjectStatusCompleted)})

	linkStakeholder(t, db, a.ID, "Ana", AddProjectStakeholderRequest{EngagementScore: 80})
	linkStakeholder(t, db, b.ID, "Bo", AddProjectStakeholderRequest{EngagementScore: 41})

	o, err := svc.Overview(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Projects) != 3 {
		t.Fatalf("projects = %d", len(o.Projects))
	}
	if o.ActiveProjects != 2 {
		t.Errorf("ActiveProjects = %d, want 2", o.ActiveProjects)
	}
	if o.TotalStakeholders != 2 {
		t.Errorf("TotalStakeholders = %d, want 2", o.TotalStakeholders)
	}
	// Projects without stakeholders do not drag the average down.
	if o.AverageEngagement != 61 {
		t.Errorf("AverageEngagement = %d, want 61", o.AverageEngagement)
	}
}

func TestDashboardOverviewListsEveryProject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, nil)
	want := overviewPageSize + 5
	for i := 0; i < want; i++ {
		createProject(t, db, testUser, fmt.Sprintf("P%03d", i))
	}

	o, err := svc.Overview(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Projects) != want {
		t.Errorf("projects = %d, want %d", len(o.Projects), want)
	}
	if o.ActiveProjects != want {
		t.Errorf("ActiveProjects = %d, want %d", o.ActiveProjects, want)
	}
}

func TestDashboardReportsQueryErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, nil)
	project := createProject(t, db, testUser, "ERP")

	if err := db.Migrator().DropTable(&models.Milestone{}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ProjectDashboard(project.ID, testUser); err == nil {
		t.Error("ProjectDashboard should fail when milestones cannot be read")
	}
	if _, err := svc.Overview(testUser); err == nil {
		t.Error("Overview should fail when milestones cannot be read")
	}
}
