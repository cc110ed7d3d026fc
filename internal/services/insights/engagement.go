package insights

// EngagementRow is the slice of a project stakeholder the aggregator needs.
type EngagementRow struct {
	Name             string
	EngagementScore  int
	PerformanceScore int
}

// BreakdownItem is one bar of the engagement chart.
type BreakdownItem struct {
	Name        string `json:"name"`
	Engagement  int    `json:"engagement"`
	Performance int    `json:"performance"`
}

// EngagementSummary is the project-level engagement and risk figure.
type EngagementSummary struct {
	EngagementLevel int             `json:"engagement_level"`
	RiskAssessment  int             `json:"risk_assessment"`
	Breakdown       []BreakdownItem `json:"breakdown"`
}

// Aggregate computes the mean engagement of a project's stakeholders and
// derives risk as its complement (100 - mean). This is a plain linear
// heuristic, not a calibrated risk model. An empty input yields zeros.
func Aggregate(rows []EngagementRow) EngagementSummary {
	summary := EngagementSummary{Breakdown: []BreakdownItem{}}
	if len(rows) == 0 {
		return summary
	}

	total := 0
	for _, row := range rows {
		total += row.EngagementScore
		summary.Breakdown = append(summary.Breakdown, BreakdownItem{
			Name:        row.Name,
			Engagement:  row.EngagementScore,
			Performance: row.PerformanceScore,
		})
	}

	summary.EngagementLevel = roundInt(float64(total) / float64(len(rows)))
	summary.RiskAssessment = roundInt(float64(100 - summary.EngagementLevel))
	return summary
}
