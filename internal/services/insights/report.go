package insights

import (
	"sort"
	"time"
)

// TrendDirection is the arrow shown next to a stakeholder in a report.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// NotSet is the distribution bucket for stakeholders without a type.
const NotSet = "not_set"

// canonicalTypes is the display order of the type distribution.
var canonicalTypes = []string{TypeChampion, TypeEarlyAdopter, TypeNeutral, TypeSkeptic, TypeResistant}

// StageForScore buckets a single engagement score into an ADKAR stage.
// This is a coarser model than the per-stage scores used by Rollup and
// the two can disagree for the same stakeholder.
func StageForScore(score int) Stage {
	switch {
	case score < 20:
		return StageAwareness
	case score < 40:
		return StageDesire
	case score < 60:
		return StageKnowledge
	case score < 80:
		return StageAbility
	default:
		return StageReinforcement
	}
}

// HistoryPoint is one score snapshot.
type HistoryPoint struct {
	EngagementScore  int       `json:"engagement_score"`
	PerformanceScore int       `json:"performance_score"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// Trend compares the last two engagement values of a history ordered by
// time ascending.
func Trend(history []HistoryPoint) TrendDirection {
	if len(history) < 2 {
		return TrendNeutral
	}
	prev := history[len(history)-2].EngagementScore
	last := history[len(history)-1].EngagementScore
	switch {
	case last > prev:
		return TrendUp
	case last < prev:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// TypeCount is one slice of the type distribution chart.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// TypeDistribution tallies stakeholder types. Empty values count as
// not_set. Known types come first in canonical order, then any unknown
// values alphabetically, then not_set. Zero buckets are omitted.
func TypeDistribution(types []string) []TypeCount {
	counts := make(map[string]int)
	for _, t := range types {
		if t == "" {
			t = NotSet
		}
		counts[t]++
	}

	result := make([]TypeCount, 0, len(counts))
	for _, t := range canonicalTypes {
		if n := counts[t]; n > 0 {
			result = append(result, TypeCount{Type: t, Count: n})
			delete(counts, t)
		}
	}
	notSet := counts[NotSet]
	delete(counts, NotSet)

	others := make([]string, 0, len(counts))
	for t := range counts {
		others = append(others, t)
	}
	sort.Strings(others)
	for _, t := range others {
		result = append(result, TypeCount{Type: t, Count: counts[t]})
	}

	if notSet > 0 {
		result = append(result, TypeCount{Type: NotSet, Count: notSet})
	}
	return result
}

// ReportInput is one stakeholder of a project with its score history.
type ReportInput struct {
	ProjectStakeholderID uint
	Name                 string
	StakeholderType      string
	ADKAR                ADKARScores
	EngagementScore      int
	PerformanceScore     int
	History              []HistoryPoint
}

// ReportRow is a derived report line for one stakeholder.
type ReportRow struct {
	ProjectStakeholderID uint           `json:"project_stakeholder_id"`
	Name                 string         `json:"name"`
	StakeholderType      string         `json:"stakeholder_type"`
	EngagementScore      int            `json:"engagement_score"`
	PerformanceScore     int            `json:"performance_score"`
	Stage                Stage          `json:"stage"`
	Trend                TrendDirection `json:"trend"`
	Rollup               ADKARRollup    `json:"adkar"`
	History              []HistoryPoint `json:"history"`
}

// StageCount is the number of stakeholders bucketed into a stage.
type StageCount struct {
	Stage Stage `json:"stage"`
	Count int   `json:"count"`
}

// Report is the derived project report.
type Report struct {
	Rows         []ReportRow       `json:"rows"`
	Distribution []TypeCount       `json:"distribution"`
	StageCounts  []StageCount      `json:"stage_counts"`
	Summary      EngagementSummary `json:"summary"`
}

// BuildReport derives stage, trend and rollup per stakeholder and the
// chart inputs for a whole project.
func BuildReport(inputs []ReportInput) Report {
	report := Report{
		Rows:        make([]ReportRow, 0, len(inputs)),
		StageCounts: make([]StageCount, len(Stages)),
	}
	for i, stage := range Stages {
		report.StageCounts[i] = StageCount{Stage: stage}
	}

	types := make([]string, 0, len(inputs))
	engagement := make([]EngagementRow, 0, len(inputs))
	for _, in := range inputs {
		history := in.History
		if history == nil {
			history = []HistoryPoint{}
		}
		stage := StageForScore(in.EngagementScore)
		report.Rows = append(report.Rows, ReportRow{
			ProjectStakeholderID: in.ProjectStakeholderID,
			Name:                 in.Name,
			StakeholderType:      in.StakeholderType,
			EngagementScore:      in.EngagementScore,
			PerformanceScore:     in.PerformanceScore,
			Stage:                stage,
			Trend:                Trend(history),
			Rollup:               Rollup(in.ADKAR),
			History:              history,
		})
		for i := range report.StageCounts {
			if report.StageCounts[i].Stage == stage {
				report.StageCounts[i].Count++
			}
		}
		types = append(types, in.StakeholderType)
		engagement = append(engagement, EngagementRow{
			Name:             in.Name,
			EngagementScore:  in.EngagementScore,
			PerformanceScore: in.PerformanceScore,
		})
	}

	report.Distribution = TypeDistribution(types)
	report.Summary = Aggregate(engagement)
	return report
}
