package view

import "github.com/huangsam/timesheet/schema"

// Section identifiers of the combined report.
const (
	CapacitySectionID = "capacityTableSection"
	ResultsSectionID  = "results-container"
	OvertimeSectionID = "overtimeSection"
	SummarySectionID  = "summary-container"
)

// PageBreaks lays out the combined report from the two stored preferences.
// Each preference is "true", "false" or unset ("").
func PageBreaks(capacity, overtime string) schema.Layout {
	capacityOn := capacity == "true"
	overtimeOn := overtime == "true"

	return schema.Layout{Sections: []schema.Section{
		{
			ID:      CapacitySectionID,
			Title:   "Available Capacity",
			Visible: capacityOn,
		},
		{
			ID:              ResultsSectionID,
			Title:           "Category Totals",
			Visible:         true,
			PageBreakBefore: capacityOn,
		},
		{
			ID:              OvertimeSectionID,
			Title:           "Workload Strain",
			Visible:         overtimeOn,
			PageBreakBefore: capacityOn != overtimeOn,
		},
		{
			ID:              SummarySectionID,
			Title:           "Summary",
			Visible:         true,
			PageBreakBefore: !capacityOn && overtime == "false",
		},
	}}
}
