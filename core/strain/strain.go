// Package strain synthesizes smoothed workload-strain trends for charting.
package strain

import (
	"math"

	"github.com/huangsam/timesheet/schema"
)

// Smoothing constants of the strain trend.
const (
	SmoothingFactor = 0.4 // weight of the newest overtime value
	NoiseSpread     = 0.3 // total width of the backfill noise, relative to current overtime
	noiseCenter     = 0.5 // centers U around zero
	initialEMAScore = 0.0 // score before the first period
)

// Synthesize builds the trend of every employee, keyed by author.
// Weeks may be nil, in which case each trend holds only the Current point.
// A repeated author overwrites the earlier entry.
func Synthesize(employees []schema.EmployeeStrainRecord, weeks []string, rng RandomSource) map[string][]schema.TrendPoint {
	result := make(map[string][]schema.TrendPoint, len(employees))
	labels := PeriodLabels(weeks)
	for _, emp := range employees {
		result[emp.Author] = trendFor(emp, labels, len(weeks), rng)
	}
	return result
}

// PeriodLabels returns weeks followed by the Current label.
func PeriodLabels(weeks []string) []string {
	labels := make([]string, 0, len(weeks)+1)
	labels = append(labels, weeks...)
	return append(labels, schema.CurrentPeriodLabel)
}

// Backfill synthesizes numWeeks historical overtime values ramping towards current,
// then appends current itself. Historical values are clamped at zero; current is not.
func Backfill(current float64, numWeeks int, rng RandomSource) []float64 {
	if numWeeks <= 0 {
		return []float64{current}
	}
	values := make([]float64, 0, numWeeks+1)
	for i := range numWeeks {
		progressionFactor := float64(i+1) / float64(numWeeks+1)
		base := current * progressionFactor
		variation := (rng.Float64() - noiseCenter) * current * NoiseSpread
		values = append(values, math.Max(0, base+variation))
	}
	return append(values, current)
}

// EMA smooths values left to right starting from a zero score.
func EMA(values []float64) []float64 {
	scores := make([]float64, len(values))
	prev := initialEMAScore
	for i, v := range values {
		next := v*SmoothingFactor + prev*(1-SmoothingFactor)
		scores[i] = next
		prev = next
	}
	return scores
}

// trendFor runs backfill, smoothing and banding for one employee.
func trendFor(emp schema.EmployeeStrainRecord, labels []string, numWeeks int, rng RandomSource) []schema.TrendPoint {
	scores := EMA(Backfill(emp.CurrentOvertime, numWeeks, rng))
	points := make([]schema.TrendPoint, len(scores))
	for i, score := range scores {
		points[i] = schema.TrendPoint{
			PeriodLabel: labels[i],
			EMAScore:    score,
			RiskBand:    Classify(score),
		}
	}
	return points
}
