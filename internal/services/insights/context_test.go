package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func threeProjects() []Project {
	return []Project{
		{ID: 10, Name: "CRM Rollout", Status: "completed"},
		{ID: 20, Name: "ERP Upgrade", Status: "active"},
		{ID: 30, Name: "Office Move", Status: "on_hold"},
	}
}

func TestBuildContextResistanceThreshold(t *testing.T) {
	in := ContextInput{
		Projects:     threeProjects(),
		Stakeholders: []Stakeholder{{ID: 1, Name: "Dana"}},
		StakeholderScores: []StakeholderScore{
			{ProjectID: 10, StakeholderID: 1, StakeholderType: TypeResistant},
		},
	}

	ctx := BuildContext(in)
	assert.Empty(t, ctx.Insights.ResistancePatterns)

	in.StakeholderScores = append(in.StakeholderScores, StakeholderScore{ProjectID: 20, StakeholderID: 1, StakeholderType: TypeSkeptic})
	ctx = BuildContext(in)
	require.Len(t, ctx.Insights.ResistancePatterns, 1)
	assert.Equal(t, "Dana has been resistant or skeptical in 2 projects: CRM Rollout, ERP Upgrade", ctx.Insights.ResistancePatterns[0])
}

func TestBuildContextMixedTypes(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects:     threeProjects(),
		Stakeholders: []Stakeholder{{ID: 1, Name: "Dana"}},
		StakeholderScores: []StakeholderScore{
			{ProjectID: 30, StakeholderID: 1, StakeholderType: TypeChampion},
			{ProjectID: 20, StakeholderID: 1, StakeholderType: TypeResistant},
			{ProjectID: 10, StakeholderID: 1, StakeholderType: TypeResistant},
		},
	})

	require.Len(t, ctx.Stakeholders, 1)
	history := ctx.Stakeholders[0].History
	require.Len(t, history, 3)
	assert.Equal(t, "CRM Rollout", history[0].ProjectName)
	assert.Equal(t, "ERP Upgrade", history[1].ProjectName)
	assert.Equal(t, "Office Move", history[2].ProjectName)

	require.Len(t, ctx.Insights.ResistancePatterns, 1)
	assert.Contains(t, ctx.Insights.ResistancePatterns[0], "in 2 projects: CRM Rollout, ERP Upgrade")
	assert.Empty(t, ctx.Insights.ChampionPatterns)
}

func TestBuildContextChampions(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects:     threeProjects(),
		Stakeholders: []Stakeholder{{ID: 1, Name: "Eli"}, {ID: 2, Name: "Fay"}},
		StakeholderScores: []StakeholderScore{
			{ProjectID: 10, StakeholderID: 1, StakeholderType: TypeChampion},
			{ProjectID: 20, StakeholderID: 1, StakeholderType: TypeEarlyAdopter},
			{ProjectID: 10, StakeholderID: 2, StakeholderType: TypeNeutral},
			{ProjectID: 20, StakeholderID: 2, StakeholderType: TypeChampion},
		},
	})

	assert.Equal(t, []string{"Eli has been a champion or early adopter in 2 projects: CRM Rollout, ERP Upgrade"}, ctx.Insights.ChampionPatterns)
}

func TestBuildContextSkipsMissingJoins(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects:     threeProjects(),
		Stakeholders: []Stakeholder{{ID: 1, Name: "Gus", ReportsToID: uintPtr(99)}},
		StakeholderScores: []StakeholderScore{
			{ProjectID: 404, StakeholderID: 1, StakeholderType: TypeResistant},
			{ProjectID: 10, StakeholderID: 77, StakeholderType: TypeResistant},
			{ProjectID: 10, StakeholderID: 1, StakeholderType: TypeResistant},
		},
		GroupScores: []GroupScore{{ProjectID: 10, GroupID: 5, Sentiment: SentimentNegative}},
	})

	require.Len(t, ctx.Stakeholders, 1)
	assert.Len(t, ctx.Stakeholders[0].History, 1)
	assert.Nil(t, ctx.Stakeholders[0].ManagerName)
	assert.Empty(t, ctx.Groups)
	assert.Empty(t, ctx.Insights.ResistancePatterns)
}

func TestBuildContextGroupResistance(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects: threeProjects(),
		Groups:   []Group{{ID: 5, Name: "Finance"}, {ID: 6, Name: "Sales"}},
		GroupScores: []GroupScore{
			{ProjectID: 10, GroupID: 5, Sentiment: SentimentNegative, ADKAR: ADKARScores{Awareness: 80, Desire: 80}},
			{ProjectID: 30, GroupID: 5, Sentiment: "neutral", ADKAR: ADKARScores{Awareness: 30, Desire: 20}},
			{ProjectID: 10, GroupID: 6, Sentiment: "positive", ADKAR: ADKARScores{Awareness: 30, Desire: 60}},
			{ProjectID: 20, GroupID: 6, Sentiment: SentimentNegative},
		},
	})

	require.Len(t, ctx.Groups, 2)
	assert.Len(t, ctx.Groups[0].History, 2)
	assert.Equal(t, []string{"The Finance group showed resistance in 2 projects: CRM Rollout, Office Move"}, ctx.Insights.GroupResistancePatterns)
}

func TestBuildContextOrgHierarchy(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects: threeProjects(),
		Stakeholders: []Stakeholder{
			{ID: 1, Name: "Me", Department: "IT", IsMe: true, ReportsToID: uintPtr(2)},
			{ID: 2, Name: "Boss", Department: "Exec"},
			{ID: 3, Name: "Peer", Department: "IT"},
			{ID: 4, Name: "Report", Department: "Ops", ReportsToID: uintPtr(1)},
		},
	})

	require.NotNil(t, ctx.Stakeholders[0].ManagerName)
	assert.Equal(t, "Boss", *ctx.Stakeholders[0].ManagerName)
	assert.Equal(t, []string{
		"Peers in your department (IT): Peer",
		"Your direct reports: Report",
		"You report to Boss",
	}, ctx.Insights.OrgHierarchy)
}

func TestBuildContextOrgHierarchyCycle(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Stakeholders: []Stakeholder{
			{ID: 1, Name: "Me", IsMe: true, ReportsToID: uintPtr(2)},
			{ID: 2, Name: "Other", ReportsToID: uintPtr(1)},
		},
	})

	assert.Equal(t, []string{"Your direct reports: Other", "You report to Other"}, ctx.Insights.OrgHierarchy)
}

func TestBuildContextEmpty(t *testing.T) {
	ctx := BuildContext(ContextInput{})
	assert.NotNil(t, ctx.Stakeholders)
	assert.NotNil(t, ctx.Groups)
	assert.Empty(t, ctx.Insights.ResistancePatterns)
	assert.Empty(t, ctx.Insights.ChampionPatterns)
	assert.Empty(t, ctx.Insights.GroupResistancePatterns)
	assert.Empty(t, ctx.Insights.OrgHierarchy)
	assert.Contains(t, ctx.RenderPrompt(), "No stakeholders recorded yet.")
}

func TestRenderPrompt(t *testing.T) {
	ctx := BuildContext(ContextInput{
		Projects: threeProjects(),
		Stakeholders: []Stakeholder{
			{ID: 1, Name: "Dana", Role: "CFO", Department: "Finance", GroupName: "Leadership"},
		},
		StakeholderScores: []StakeholderScore{
			{ProjectID: 10, StakeholderID: 1, StakeholderType: TypeResistant, EngagementScore: 30, Notes: "worried about cost",
				ADKAR: ADKARScores{Awareness: 60, Desire: 20, Knowledge: 50, Ability: 40, Reinforcement: 10}},
			{ProjectID: 20, StakeholderID: 1, StakeholderType: TypeEarlyAdopter, EngagementScore: 70},
		},
	})

	out := ctx.RenderPrompt()
	assert.Contains(t, out, "- Dana (CFO; Finance; group: Leadership)")
	assert.Contains(t, out, "CRM Rollout [completed]: type resistant, ADKAR 60/20/50/40/10, engagement 30. Notes: worried about cost")
	assert.Contains(t, out, "ERP Upgrade [active]: type early adopter")
	assert.False(t, strings.Contains(out, "## Recurring resistance"))
}
