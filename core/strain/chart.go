package strain

import (
	"math"

	"github.com/huangsam/timesheet/schema"
)

// Axis constants of the strain chart.
const (
	minYAxisMax   = 20.0
	yAxisHeadroom = 2.0
)

// YAxisMax returns max(20, highest workload strain score + 2).
// It only looks at current scores, never at the synthesized trend.
func YAxisMax(employees []schema.EmployeeStrainRecord) float64 {
	if len(employees) == 0 {
		return minYAxisMax
	}
	highest := math.Inf(-1)
	for _, emp := range employees {
		highest = math.Max(highest, emp.WorkloadStrainScore)
	}
	return math.Max(minYAxisMax, highest+yAxisHeadroom)
}

// BuildChart synthesizes every trend and keeps the input order of employees.
func BuildChart(payload schema.StrainPayload, rng RandomSource) schema.StrainChart {
	weeks := payload.Weeks()
	labels := PeriodLabels(weeks)
	chart := schema.StrainChart{
		Labels:   labels,
		Series:   make([]schema.StrainSeries, 0, len(payload.BurnoutData)),
		YAxisMax: YAxisMax(payload.BurnoutData),
		Formula:  schema.EMAFormula,
		Weekly:   payload.WeeklyOvertimeData,
	}
	for _, emp := range payload.BurnoutData {
		lineBand := Classify(emp.WorkloadStrainScore)
		chart.Series = append(chart.Series, schema.StrainSeries{
			Author:              emp.Author,
			CurrentOvertime:     emp.CurrentOvertime,
			WorkloadStrainScore: emp.WorkloadStrainScore,
			Points:              trendFor(emp, labels, len(weeks), rng),
			LineBand:            lineBand,
			LineColor:           lineBand.Color(),
			BackgroundColor:     lineBand.BackgroundColor(),
		})
	}
	return chart
}
