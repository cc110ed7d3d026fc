// Package insights holds the pure scoring and aggregation rules behind the
// dashboard, report, AI context and conversation-starter endpoints. Nothing in
// here touches the database or the network; callers pass rows that are
// already scoped to the authenticated owner.
package insights

import "math"

// Stage is one step of the ADKAR change model.
type Stage string

const (
	StageAwareness     Stage = "Awareness"
	StageDesire        Stage = "Desire"
	StageKnowledge     Stage = "Knowledge"
	StageAbility       Stage = "Ability"
	StageReinforcement Stage = "Reinforcement"
)

// Stages is the canonical ADKAR order. Tie-breaks depend on it.
var Stages = []Stage{StageAwareness, StageDesire, StageKnowledge, StageAbility, StageReinforcement}

// ADKARScores are the five explicit per-stage scores, expected in [0,100].
type ADKARScores struct {
	Awareness     int `json:"awareness"`
	Desire        int `json:"desire"`
	Knowledge     int `json:"knowledge"`
	Ability       int `json:"ability"`
	Reinforcement int `json:"reinforcement"`
}

// Score returns the score recorded for stage.
func (s ADKARScores) Score(stage Stage) int {
	switch stage {
	case StageAwareness:
		return s.Awareness
	case StageDesire:
		return s.Desire
	case StageKnowledge:
		return s.Knowledge
	case StageAbility:
		return s.Ability
	case StageReinforcement:
		return s.Reinforcement
	}
	return 0
}

// ADKARRollup summarises a stakeholder's five stage scores.
type ADKARRollup struct {
	Average         int   `json:"average"`
	BottleneckStage Stage `json:"bottleneck_stage"`
	BottleneckScore int   `json:"bottleneck_score"`
}

// Rollup averages the five scores and picks the lowest stage as the
// bottleneck. When several stages share the minimum the earliest one in
// canonical order wins.
func Rollup(s ADKARScores) ADKARRollup {
	sum := s.Awareness + s.Desire + s.Knowledge + s.Ability + s.Reinforcement

	bottleneck := Stages[0]
	lowest := s.Score(bottleneck)
	for _, stage := range Stages[1:] {
		if v := s.Score(stage); v < lowest {
			bottleneck = stage
			lowest = v
		}
	}

	return ADKARRollup{
		Average:         roundInt(float64(sum) / float64(len(Stages))),
		BottleneckStage: bottleneck,
		BottleneckScore: lowest,
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
