package schema

import "time"

// WorklogEntry is one row of a worklog export.
type WorklogEntry struct {
	StartDate         time.Time `json:"start_date"`
	ProjectName       string    `json:"project_name"`
	Comment           string    `json:"comment"`
	Labels            string    `json:"labels"`
	IssueKey          string    `json:"issue_key"`
	TimeSpentSeconds  float64   `json:"time_spent_seconds"`
	IssueStatus       string    `json:"issue_status"`
	IssueSummary      string    `json:"issue_summary"`
	Author            string    `json:"author"`
	OriginalEstimate  float64   `json:"original_estimate_seconds"`
	RemainingEstimate float64   `json:"remaining_estimate_seconds"`
}

// Hours returns the raw time spent in hours.
func (e WorklogEntry) Hours() float64 {
	return e.TimeSpentSeconds / 3600
}

// WorklogSnapshot is an uploaded worklog kept in the snapshot store.
type WorklogSnapshot struct {
	ID         string         `json:"id"`
	SourceName string         `json:"source_name"`
	BaseURL    string         `json:"base_url"`
	CreatedAt  time.Time      `json:"created_at"`
	Entries    []WorklogEntry `json:"entries"`
}

// CategoryTotal is the total effort booked against one label.
type CategoryTotal struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
}

// SummaryRow is one group of the per-task summary.
type SummaryRow struct {
	Labels       string  `json:"labels"`
	IssueSummary string  `json:"issue_summary"`
	Author       string  `json:"author"`
	IssueStatus  string  `json:"issue_status"`
	TotalEfforts float64 `json:"total_efforts_hrs"`
}

// DetailedRow is one line of the detailed timesheet.
type DetailedRow struct {
	Date        string  `json:"date"`
	ProjectName string  `json:"project_name"`
	Comment     string  `json:"comment"`
	Hours       float64 `json:"hours"`
	Category    string  `json:"category"`
	Ticket      string  `json:"ticket"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Status      string  `json:"status"`
}

// CapacityRow is the available capacity of one author.
type CapacityRow struct {
	Author        string  `json:"author"`
	WorkingDays   int     `json:"working_days"`
	CapacityHours float64 `json:"capacity_hours"`
}

// BurnedRow is one author row of the burned capacity pivot.
type BurnedRow struct {
	Author     string             `json:"author"`
	ByLabel    map[string]float64 `json:"by_label"`
	GrandTotal float64            `json:"grand_total"`
}

// FeatureRow is a delivered feature or tech debt item in the sprint.
// Estimates are in hours.
type FeatureRow struct {
	Number            int     `json:"number"`
	Category          string  `json:"category"`
	IssueSummary      string  `json:"issue_summary"`
	OriginalEstimate  float64 `json:"original_estimate"`
	RemainingEstimate float64 `json:"remaining_estimate"`
	Status            string  `json:"status"`
	DoneBy            string  `json:"done_by"`
}

// SprintClosureReport collects capacity, burned effort and features of a sprint.
type SprintClosureReport struct {
	Capacity []CapacityRow `json:"available_capacity"`
	Labels   []string      `json:"labels"`
	Burned   []BurnedRow   `json:"burned_capacity"`
	Totals   BurnedRow     `json:"grand_total"`
	Features []FeatureRow  `json:"features"`
}

// ReportBundle carries every report for the combined output.
type ReportBundle struct {
	DateRange string              `json:"date_range"`
	Author    string              `json:"author"`
	Category  []CategoryTotal     `json:"category_totals"`
	Summary   []SummaryRow        `json:"summary"`
	Detailed  []DetailedRow       `json:"detailed"`
	Sprint    SprintClosureReport `json:"sprint_closure"`
	Strain    StrainChart         `json:"strain"`
	Layout    Layout              `json:"layout"`
}

// Section is a block of the combined report.
type Section struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Visible         bool   `json:"visible"`
	PageBreakBefore bool   `json:"page_break_before"`
}

// Layout is the ordered list of sections of the combined report.
type Layout struct {
	Sections []Section `json:"sections"`
}
