package services

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shiporsink/change/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeholderIsMeIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)

	first, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Me", IsMe: true})
	require.NoError(t, err)
	second, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Also me", IsMe: true})
	require.NoError(t, err)
	// Another user's flag is untouched.
	theirs, err := svc.Create(otherUser, &CreateStakeholderRequest{Name: "Them", IsMe: true})
	require.NoError(t, err)

	reload := func(id uint, userID string) *models.GlobalStakeholder {
		sh, err := svc.Get(id, userID)
		require.NoError(t, err)
		return sh
	}
	assert.False(t, reload(first.ID, testUser).IsMe)
	assert.True(t, reload(second.ID, testUser).IsMe)
	assert.True(t, reload(theirs.ID, otherUser).IsMe)

	_, err = svc.Update(first.ID, testUser, &UpdateStakeholderRequest{IsMe: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, reload(first.ID, testUser).IsMe)
	assert.False(t, reload(second.ID, testUser).IsMe)
}

func TestStakeholderReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	groups := NewGroupService(db)

	group, err := groups.Create(testUser, &GroupRequest{Name: "Finance"})
	require.NoError(t, err)
	foreignGroup, err := groups.Create(otherUser, &GroupRequest{Name: "Theirs"})
	require.NoError(t, err)

	boss, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Boss"})
	require.NoError(t, err)
	ana, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Ana", GroupID: &group.ID, ReportsToID: &boss.ID})
	require.NoError(t, err)
	require.NotNil(t, ana.Group)
	assert.Equal(t, "Finance", ana.Group.Name)
	assert.Equal(t, boss.ID, *ana.ReportsToID)

	_, err = svc.Create(testUser, &CreateStakeholderRequest{Name: "X", GroupID: &foreignGroup.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ana.ID, testUser, &UpdateStakeholderRequest{ReportsToID: &ana.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	cleared, err := svc.Update(ana.ID, testUser, &UpdateStakeholderRequest{GroupID: uintPtr(0), ReportsToID: uintPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, cleared.GroupID)
	assert.Nil(t, cleared.ReportsToID)
}

func TestStakeholderMoveBetweenGroups(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	groups := NewGroupService(db)

	finance, err := groups.Create(testUser, &GroupRequest{Name: "Finance"})
	require.NoError(t, err)
	sales, err := groups.Create(testUser, &GroupRequest{Name: "Sales"})
	require.NoError(t, err)
	ana, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Ana", Role: "CFO", GroupID: &finance.ID})
	require.NoError(t, err)

	stored := func() models.GlobalStakeholder {
		var row models.GlobalStakeholder
		require.NoError(t, db.First(&row, ana.ID).Error)
		return row
	}

	moved, err := svc.Update(ana.ID, testUser, &UpdateStakeholderRequest{GroupID: &sales.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.Group)
	assert.Equal(t, "Sales", moved.Group.Name)
	assert.Equal(t, sales.ID, *stored().GroupID)

	_, err = svc.Update(ana.ID, testUser, &UpdateStakeholderRequest{GroupID: uintPtr(0)})
	require.NoError(t, err)
	row := stored()
	assert.Nil(t, row.GroupID, "group_id 0 removes the stakeholder from its group")
	assert.Equal(t, "CFO", row.Role)
}

func TestStakeholderUpdateValidatesEmail(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	assert.Error(t, v.Struct(UpdateStakeholderRequest{Email: strPtr("not-an-email")}))
	assert.NoError(t, v.Struct(UpdateStakeholderRequest{Email: strPtr("ana@example.com")}))
	assert.NoError(t, v.Struct(UpdateStakeholderRequest{Email: strPtr("")}), "empty clears the address")
	assert.NoError(t, v.Struct(UpdateStakeholderRequest{Name: strPtr("Ana")}))
}

func TestStakeholderListSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	for _, req := range []CreateStakeholderRequest{
		{Name: "Ana", Role: "CFO", Department: "Finance"},
		{Name: "Bo", Role: "Engineer", Department: "IT"},
		{Name: "Cy", Email: "cy@finance.example.com", Department: "IT"},
	} {
		r := req
		_, err := svc.Create(testUser, &r)
		require.NoError(t, err)
	}
	_, err := svc.Create(otherUser, &CreateStakeholderRequest{Name: "Ana"})
	require.NoError(t, err)

	resp, err := svc.List(testUser, &StakeholderListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, "Ana", resp.Items[0].Name)

	resp, err = svc.List(testUser, &StakeholderListRequest{Search: "finance"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total, "search matches name, role and email only")

	resp, err = svc.List(testUser, &StakeholderListRequest{Department: "IT"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)
}

func TestProjectStakeholderLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	project := createProject(t, db, testUser, "ERP")
	sh, err := svc.Create(testUser, &CreateStakeholderRequest{Name: "Ana"})
	require.NoError(t, err)

	link, err := svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{
		GlobalStakeholderID: sh.ID,
		Awareness:           70,
		Desire:              30,
		EngagementScore:     40,
		PerformanceScore:    50,
		StakeholderType:     "skeptic",
	})
	require.NoError(t, err)
	require.NotNil(t, link.Stakeholder)
	assert.Equal(t, "Ana", link.Stakeholder.Name)

	_, err = svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{GlobalStakeholderID: sh.ID})
	assert.ErrorIs(t, err, ErrInvalidInput, "duplicate link")

	// Notes only: no snapshot.
	_, err = svc.UpdateLink(project.ID, link.ID, testUser, &UpdateProjectStakeholderRequest{Notes: strPtr("worried about training")})
	require.NoError(t, err)
	// Same engagement value: no snapshot.
	_, err = svc.UpdateLink(project.ID, link.ID, testUser, &UpdateProjectStakeholderRequest{EngagementScore: intPtr(40)})
	require.NoError(t, err)
	// Zero is a valid score.
	updated, err := svc.UpdateLink(project.ID, link.ID, testUser, &UpdateProjectStakeholderRequest{EngagementScore: intPtr(0), Desire: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.EngagementScore)
	assert.Equal(t, 0, updated.Desire)
	assert.Equal(t, "worried about training", updated.Notes)

	history, err := svc.History(project.ID, link.ID, testUser)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 40, history[0].EngagementScore)
	assert.Equal(t, 0, history[1].EngagementScore)

	require.NoError(t, svc.RemoveLink(project.ID, link.ID, testUser))
	_, err = svc.GetLink(project.ID, link.ID, testUser)
	assert.ErrorIs(t, err, ErrNotFound)

	// A removed stakeholder can be linked again.
	_, err = svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{GlobalStakeholderID: sh.ID})
	assert.NoError(t, err)
}

func TestProjectStakeholderAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	project := createProject(t, db, testUser, "ERP")
	sh, _ := svc.Create(testUser, &CreateStakeholderRequest{Name: "Ana"})
	link, err := svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{GlobalStakeholderID: sh.ID})
	require.NoError(t, err)

	_, err = svc.ListForProject(project.ID, otherUser)
	assert.ErrorIs(t, err, ErrNotFound)

	acceptMember(t, db, project.ID, otherUser)
	items, err := svc.ListForProject(project.ID, otherUser)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.UpdateLink(project.ID, link.ID, otherUser, &UpdateProjectStakeholderRequest{Awareness: intPtr(90)})
	assert.ErrorIs(t, err, ErrForbidden)

	// A member cannot link their own directory entries into the project.
	theirs, _ := svc.Create(otherUser, &CreateStakeholderRequest{Name: "Spy"})
	_, err = svc.AddToProject(project.ID, otherUser, &AddProjectStakeholderRequest{GlobalStakeholderID: theirs.ID})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{GlobalStakeholderID: theirs.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStakeholderDeleteCleansUp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStakeholderService(db)
	project := createProject(t, db, testUser, "ERP")
	boss, _ := svc.Create(testUser, &CreateStakeholderRequest{Name: "Boss"})
	ana, _ := svc.Create(testUser, &CreateStakeholderRequest{Name: "Ana", ReportsToID: &boss.ID})
	link, err := svc.AddToProject(project.ID, testUser, &AddProjectStakeholderRequest{GlobalStakeholderID: boss.ID, EngagementScore: 60})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(boss.ID, testUser))

	_, err = svc.Get(boss.ID, testUser)
	assert.ErrorIs(t, err, ErrNotFound)

	var links, history int64
	db.Unscoped().Model(&models.ProjectStakeholder{}).Where("id = ?", link.ID).Count(&links)
	db.Model(&models.ScoreHistory{}).Where("project_stakeholder_id = ?", link.ID).Count(&history)
	assert.Zero(t, links)
	assert.Zero(t, history)

	reloaded, err := svc.Get(ana.ID, testUser)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ReportsToID)

	assert.ErrorIs(t, svc.Delete(ana.ID, otherUser), ErrNotFound)
}
