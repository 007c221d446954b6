package strain

import "github.com/huangsam/timesheet/schema"

// Classify buckets a strain score into a risk band.
// Lower bounds are inclusive and higher bands win.
func Classify(score float64) schema.RiskBand {
	switch {
	case score >= schema.CriticalThreshold:
		return schema.CriticalBand
	case score >= schema.HighRiskThreshold:
		return schema.HighRiskBand
	case score >= schema.ModerateThreshold:
		return schema.ModerateBand
	default:
		return schema.SafeBand
	}
}
