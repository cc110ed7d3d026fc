package insights

import (
	"fmt"
	"sort"
	"strings"
)

// Stakeholder types.
const (
	TypeChampion     = "champion"
	TypeEarlyAdopter = "early_adopter"
	TypeNeutral      = "neutral"
	TypeSkeptic      = "skeptic"
	TypeResistant    = "resistant"
)

// SentimentNegative marks a project group with a negative attitude.
const SentimentNegative = "negative"

// patternThreshold is the number of projects a behaviour has to recur in
// before it is reported as a pattern.
const patternThreshold = 2

// lowStageScore is the awareness/desire level under which a group counts as
// resistant even without a negative sentiment.
const lowStageScore = 40

// Project is the project row as seen by the context builder.
type Project struct {
	ID     uint
	Name   string
	Status string
}

// Stakeholder is a global (organisation directory) stakeholder.
type Stakeholder struct {
	ID          uint
	Name        string
	Role        string
	Department  string
	GroupID     *uint
	GroupName   string
	IsMe        bool
	ReportsToID *uint
}

// StakeholderScore is a project-stakeholder link with its scores.
type StakeholderScore struct {
	ProjectID       uint
	StakeholderID   uint
	StakeholderType string
	ADKAR           ADKARScores
	EngagementScore int
	Notes           string
}

// Group is a stakeholder group.
type Group struct {
	ID   uint
	Name string
}

// GroupScore is a project-group link with its scores.
type GroupScore struct {
	ProjectID uint
	GroupID   uint
	ADKAR     ADKARScores
	Sentiment string
	Notes     string
}

// ContextInput is everything one user owns that feeds the builder.
type ContextInput struct {
	Projects          []Project
	Stakeholders      []Stakeholder
	StakeholderScores []StakeholderScore
	Groups            []Group
	GroupScores       []GroupScore
}

// HistoryEntry is one project appearance of a stakeholder.
type HistoryEntry struct {
	ProjectID       uint        `json:"project_id"`
	ProjectName     string      `json:"project_name"`
	ProjectStatus   string      `json:"project_status"`
	StakeholderType string      `json:"stakeholder_type"`
	ADKAR           ADKARScores `json:"adkar_scores"`
	EngagementScore int         `json:"engagement_score"`
	Notes           string      `json:"notes"`
}

// GroupHistoryEntry is one project appearance of a group.
type GroupHistoryEntry struct {
	ProjectID     uint        `json:"project_id"`
	ProjectName   string      `json:"project_name"`
	ProjectStatus string      `json:"project_status"`
	ADKAR         ADKARScores `json:"adkar_scores"`
	Sentiment     string      `json:"sentiment"`
	Notes         string      `json:"notes"`
}

// StakeholderContext is a stakeholder with its cross-project history.
type StakeholderContext struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Department  string         `json:"department"`
	GroupName   string         `json:"group_name,omitempty"`
	IsMe        bool           `json:"is_me"`
	ReportsToID *uint          `json:"reports_to_id,omitempty"`
	ManagerName *string        `json:"manager_name"`
	History     []HistoryEntry `json:"history"`
}

// GroupContext is a group with its cross-project history.
type GroupContext struct {
	ID      uint                `json:"id"`
	Name    string              `json:"name"`
	History []GroupHistoryEntry `json:"history"`
}

// Insights are recurring patterns phrased as plain sentences. They go
// straight into an LLM prompt, so they stay unstructured.
type Insights struct {
	ResistancePatterns      []string `json:"resistance_patterns"`
	ChampionPatterns        []string `json:"champion_patterns"`
	GroupResistancePatterns []string `json:"group_resistance_patterns"`
	OrgHierarchy            []string `json:"org_hierarchy"`
}

// CrossProjectContext is the aggregated view across all of a user's projects.
type CrossProjectContext struct {
	Stakeholders []StakeholderContext `json:"stakeholders"`
	Groups       []GroupContext       `json:"groups"`
	Insights     Insights             `json:"insights"`
}

// BuildContext joins projects, stakeholders, groups and their per-project
// scores into per-entity histories and derives the pattern sentences.
// Rows that reference an unknown project, stakeholder or group are skipped.
func BuildContext(in ContextInput) CrossProjectContext {
	projects := make(map[uint]Project, len(in.Projects))
	order := make(map[uint]int, len(in.Projects))
	for i, p := range in.Projects {
		projects[p.ID] = p
		order[p.ID] = i
	}

	stakeholderHistory := make(map[uint][]HistoryEntry)
	for _, row := range in.StakeholderScores {
		project, ok := projects[row.ProjectID]
		if !ok {
			continue
		}
		stakeholderHistory[row.StakeholderID] = append(stakeholderHistory[row.StakeholderID], HistoryEntry{
			ProjectID:       project.ID,
			ProjectName:     project.Name,
			ProjectStatus:   project.Status,
			StakeholderType: row.StakeholderType,
			ADKAR:           row.ADKAR,
			EngagementScore: row.EngagementScore,
			Notes:           row.Notes,
		})
	}

	groupHistory := make(map[uint][]GroupHistoryEntry)
	for _, row := range in.GroupScores {
		project, ok := projects[row.ProjectID]
		if !ok {
			continue
		}
		groupHistory[row.GroupID] = append(groupHistory[row.GroupID], GroupHistoryEntry{
			ProjectID:     project.ID,
			ProjectName:   project.Name,
			ProjectStatus: project.Status,
			ADKAR:         row.ADKAR,
			Sentiment:     row.Sentiment,
			Notes:         row.Notes,
		})
	}

	names := make(map[uint]string, len(in.Stakeholders))
	for _, s := range in.Stakeholders {
		names[s.ID] = s.Name
	}

	result := CrossProjectContext{
		Stakeholders: make([]StakeholderContext, 0, len(in.Stakeholders)),
		Groups:       make([]GroupContext, 0, len(in.Groups)),
	}

	for _, s := range in.Stakeholders {
		history := stakeholderHistory[s.ID]
		sort.SliceStable(history, func(i, j int) bool {
			return order[history[i].ProjectID] < order[history[j].ProjectID]
		})
		if history == nil {
			history = []HistoryEntry{}
		}

		result.Stakeholders = append(result.Stakeholders, StakeholderContext{
			ID:          s.ID,
			Name:        s.Name,
			Role:        s.Role,
			Department:  s.Department,
			GroupName:   s.GroupName,
			IsMe:        s.IsMe,
			ReportsToID: s.ReportsToID,
			ManagerName: lookupName(names, s.ReportsToID),
			History:     history,
		})
	}

	for _, g := range in.Groups {
		history := groupHistory[g.ID]
		sort.SliceStable(history, func(i, j int) bool {
			return order[history[i].ProjectID] < order[history[j].ProjectID]
		})
		if history == nil {
			history = []GroupHistoryEntry{}
		}
		result.Groups = append(result.Groups, GroupContext{ID: g.ID, Name: g.Name, History: history})
	}

	result.Insights = Insights{
		ResistancePatterns:      resistancePatterns(result.Stakeholders),
		ChampionPatterns:        championPatterns(result.Stakeholders),
		GroupResistancePatterns: groupResistancePatterns(result.Groups),
		OrgHierarchy:            orgHierarchy(result.Stakeholders),
	}
	return result
}

func lookupName(names map[uint]string, id *uint) *string {
	if id == nil {
		return nil
	}
	name, ok := names[*id]
	if !ok {
		return nil
	}
	return &name
}

func resistancePatterns(stakeholders []StakeholderContext) []string {
	patterns := []string{}
	for _, s := range stakeholders {
		projects := projectsWhere(s.History, func(h HistoryEntry) bool {
			return h.StakeholderType == TypeResistant || h.StakeholderType == TypeSkeptic
		})
		if len(projects) >= patternThreshold {
			patterns = append(patterns, fmt.Sprintf("%s has been resistant or skeptical in %d projects: %s",
				s.Name, len(projects), strings.Join(projects, ", ")))
		}
	}
	return patterns
}

func championPatterns(stakeholders []StakeholderContext) []string {
	patterns := []string{}
	for _, s := range stakeholders {
		projects := projectsWhere(s.History, func(h HistoryEntry) bool {
			return h.StakeholderType == TypeChampion || h.StakeholderType == TypeEarlyAdopter
		})
		if len(projects) >= patternThreshold {
			patterns = append(patterns, fmt.Sprintf("%s has been a champion or early adopter in %d projects: %s",
				s.Name, len(projects), strings.Join(projects, ", ")))
		}
	}
	return patterns
}

func groupResistancePatterns(groups []GroupContext) []string {
	patterns := []string{}
	for _, g := range groups {
		var projects []string
		for _, h := range g.History {
			lowAdoption := h.ADKAR.Awareness < lowStageScore && h.ADKAR.Desire < lowStageScore
			if h.Sentiment == SentimentNegative || lowAdoption {
				projects = append(projects, h.ProjectName)
			}
		}
		if len(projects) >= patternThreshold {
			patterns = append(patterns, fmt.Sprintf("The %s group showed resistance in %d projects: %s",
				g.Name, len(projects), strings.Join(projects, ", ")))
		}
	}
	return patterns
}

func projectsWhere(history []HistoryEntry, match func(HistoryEntry) bool) []string {
	var projects []string
	for _, h := range history {
		if match(h) {
			projects = append(projects, h.ProjectName)
		}
	}
	return projects
}

// orgHierarchy describes the reporting lines around the stakeholder marked
// as the current user. Only one hop is followed in either direction, so a
// reports_to cycle cannot loop.
func orgHierarchy(stakeholders []StakeholderContext) []string {
	facts := []string{}

	var me *StakeholderContext
	for i := range stakeholders {
		if stakeholders[i].IsMe {
			me = &stakeholders[i]
			break
		}
	}
	if me == nil {
		return facts
	}

	if me.Department != "" {
		var peers []string
		for _, s := range stakeholders {
			if s.ID != me.ID && s.Department == me.Department {
				peers = append(peers, s.Name)
			}
		}
		if len(peers) > 0 {
			facts = append(facts, fmt.Sprintf("Peers in your department (%s): %s", me.Department, strings.Join(peers, ", ")))
		}
	}

	var reports []string
	for _, s := range stakeholders {
		if s.ID != me.ID && s.ReportsToID != nil && *s.ReportsToID == me.ID {
			reports = append(reports, s.Name)
		}
	}
	if len(reports) > 0 {
		facts = append(facts, fmt.Sprintf("Your direct reports: %s", strings.Join(reports, ", ")))
	}

	if me.ManagerName != nil {
		facts = append(facts, fmt.Sprintf("You report to %s", *me.ManagerName))
	}

	return facts
}

// RenderPrompt formats the context as a text block for an LLM system prompt.
func (c CrossProjectContext) RenderPrompt() string {
	var b strings.Builder

	b.WriteString("## Stakeholders across projects\n")
	if len(c.Stakeholders) == 0 {
		b.WriteString("No stakeholders recorded yet.\n")
	}
	for _, s := range c.Stakeholders {
		b.WriteString("- ")
		b.WriteString(s.Name)
		var details []string
		if s.IsMe {
			details = append(details, "this is the user")
		}
		if s.Role != "" {
			details = append(details, s.Role)
		}
		if s.Department != "" {
			details = append(details, s.Department)
		}
		if s.GroupName != "" {
			details = append(details, "group: "+s.GroupName)
		}
		if s.ManagerName != nil {
			details = append(details, "reports to "+*s.ManagerName)
		}
		if len(details) > 0 {
			b.WriteString(" (" + strings.Join(details, "; ") + ")")
		}
		b.WriteString("\n")

		for _, h := range s.History {
			fmt.Fprintf(&b, "  - %s [%s]: type %s, ADKAR %d/%d/%d/%d/%d, engagement %d",
				h.ProjectName, h.ProjectStatus, TypeLabel(h.StakeholderType),
				h.ADKAR.Awareness, h.ADKAR.Desire, h.ADKAR.Knowledge, h.ADKAR.Ability, h.ADKAR.Reinforcement,
				h.EngagementScore)
			if h.Notes != "" {
				b.WriteString(". Notes: " + h.Notes)
			}
			b.WriteString("\n")
		}
	}

	if len(c.Groups) > 0 {
		b.WriteString("\n## Groups across projects\n")
		for _, g := range c.Groups {
			b.WriteString("- " + g.Name + "\n")
			for _, h := range g.History {
				fmt.Fprintf(&b, "  - %s [%s]: sentiment %s, ADKAR %d/%d/%d/%d/%d\n",
					h.ProjectName, h.ProjectStatus, TypeLabel(h.Sentiment),
					h.ADKAR.Awareness, h.ADKAR.Desire, h.ADKAR.Knowledge, h.ADKAR.Ability, h.ADKAR.Reinforcement)
			}
		}
	}

	sections := []struct {
		title string
		lines []string
	}{
		{"Recurring resistance", c.Insights.ResistancePatterns},
		{"Recurring champions", c.Insights.ChampionPatterns},
		{"Group resistance", c.Insights.GroupResistancePatterns},
		{"Organisation", c.Insights.OrgHierarchy},
	}
	for _, section := range sections {
		if len(section.lines) == 0 {
			continue
		}
		b.WriteString("\n## " + section.title + "\n")
		for _, line := range section.lines {
			b.WriteString("- " + line + "\n")
		}
	}

	return b.String()
}

// TypeLabel renders a stakeholder type for prose, e.g. "early adopter".
func TypeLabel(v string) string {
	if v == "" {
		return "not set"
	}
	return strings.ReplaceAll(v, "_", " ")
}
