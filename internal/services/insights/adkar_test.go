package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollup(t *testing.T) {
	tests := []struct {
		name       string
		scores     ADKARScores
		average    int
		bottleneck Stage
		lowest     int
	}{
		{
			name:       "distinct minimum",
			scores:     ADKARScores{Awareness: 80, Desire: 60, Knowledge: 40, Ability: 70, Reinforcement: 90},
			average:    68,
			bottleneck: StageKnowledge,
			lowest:     40,
		},
		{
			name:       "tie picks earliest stage",
			scores:     ADKARScores{Awareness: 50, Desire: 30, Knowledge: 70, Ability: 30, Reinforcement: 30},
			average:    42,
			bottleneck: StageDesire,
			lowest:     30,
		},
		{
			name:       "all equal",
			scores:     ADKARScores{Awareness: 55, Desire: 55, Knowledge: 55, Ability: 55, Reinforcement: 55},
			average:    55,
			bottleneck: StageAwareness,
			lowest:     55,
		},
		{
			name:       "rounds to nearest",
			scores:     ADKARScores{Awareness: 1, Desire: 1, Knowledge: 1, Ability: 1, Reinforcement: 8},
			average:    2,
			bottleneck: StageAwareness,
			lowest:     1,
		},
		{
			name:       "zero value",
			scores:     ADKARScores{},
			average:    0,
			bottleneck: StageAwareness,
			lowest:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rollup(tt.scores)
			assert.Equal(t, tt.average, got.Average)
			assert.Equal(t, tt.bottleneck, got.BottleneckStage)
			assert.Equal(t, tt.lowest, got.BottleneckScore)
		})
	}
}

func TestRollupBottleneckIsMinimum(t *testing.T) {
	cases := []ADKARScores{
		{Awareness: 10, Desire: 20, Knowledge: 30, Ability: 40, Reinforcement: 50},
		{Awareness: 90, Desire: 80, Knowledge: 70, Ability: 60, Reinforcement: 50},
		{Awareness: 100, Desire: 0, Knowledge: 100, Ability: 0, Reinforcement: 100},
	}
	for _, scores := range cases {
		got := Rollup(scores)
		for _, stage := range Stages {
			assert.LessOrEqual(t, got.BottleneckScore, scores.Score(stage))
		}
		assert.Equal(t, got.BottleneckScore, scores.Score(got.BottleneckStage))
	}
}

func TestAggregate(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got := Aggregate(nil)
		assert.Equal(t, 0, got.EngagementLevel)
		assert.Equal(t, 0, got.RiskAssessment)
		assert.NotNil(t, got.Breakdown)
		assert.Empty(t, got.Breakdown)
	})

	t.Run("mean and complement", func(t *testing.T) {
		got := Aggregate([]EngagementRow{
			{Name: "Ana", EngagementScore: 70, PerformanceScore: 60},
			{Name: "Ben", EngagementScore: 45, PerformanceScore: 50},
			{Name: "Cy", EngagementScore: 66, PerformanceScore: 80},
		})
		assert.Equal(t, 60, got.EngagementLevel)
		assert.Equal(t, 40, got.RiskAssessment)
		assert.Equal(t, []BreakdownItem{
			{Name: "Ana", Engagement: 70, Performance: 60},
			{Name: "Ben", Engagement: 45, Performance: 50},
			{Name: "Cy", Engagement: 66, Performance: 80},
		}, got.Breakdown)
	})

	t.Run("level and risk sum to 100", func(t *testing.T) {
		for _, scores := range [][]int{{0}, {100}, {33, 34}, {1, 2, 2}, {99, 0, 50, 12}} {
			rows := make([]EngagementRow, len(scores))
			for i, s := range scores {
				rows[i] = EngagementRow{EngagementScore: s}
			}
			got := Aggregate(rows)
			assert.InDelta(t, 100, got.EngagementLevel+got.RiskAssessment, 1)
		}
	})
}
