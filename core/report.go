package core

import (
	"sort"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// FilterByAuthor keeps the entries booked by author.
// An empty author or "All" returns the entries unchanged.
func FilterByAuthor(entries []schema.WorklogEntry, author string) []schema.WorklogEntry {
	if author == "" || author == schema.AllAuthors {
		return entries
	}
	filtered := make([]schema.WorklogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Author == author {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FilterByDateRange keeps entries whose start date falls within [start, end].
// Both bounds are calendar days and either may be zero to leave it open.
func FilterByDateRange(entries []schema.WorklogEntry, start, end time.Time) []schema.WorklogEntry {
	if start.IsZero() && end.IsZero() {
		return entries
	}
	var endExclusive time.Time
	if !end.IsZero() {
		endExclusive = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	filtered := make([]schema.WorklogEntry, 0, len(entries))
	for _, e := range entries {
		if !start.IsZero() && e.StartDate.Before(start) {
			continue
		}
		if !endExclusive.IsZero() && !e.StartDate.Before(endExclusive) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// Authors returns the distinct authors, sorted.
func Authors(entries []schema.WorklogEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		seen[e.Author] = struct{}{}
	}
	authors := make([]string, 0, len(seen))
	for a := range seen {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	return authors
}

// CategoryTotals sums the rounded hours of every entry per label.
func CategoryTotals(entries []schema.WorklogEntry) []schema.CategoryTotal {
	totals := make(map[string]float64)
	for _, e := range entries {
		totals[e.Labels] += contract.RoundHours(e.Hours())
	}
	result := make([]schema.CategoryTotal, 0, len(totals))
	for category, hours := range totals {
		result = append(result, schema.CategoryTotal{Category: category, Hours: contract.RoundHours(hours)})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}

type summaryKey struct {
	labels, summary, author, status string
}

// Summary totals the effort of each task, grouped by labels, summary, author and status.
func Summary(entries []schema.WorklogEntry) []schema.SummaryRow {
	seconds := make(map[summaryKey]float64)
	for _, e := range entries {
		seconds[summaryKey{e.Labels, e.IssueSummary, e.Author, e.IssueStatus}] += e.TimeSpentSeconds
	}

	rows := make([]schema.SummaryRow, 0, len(seconds))
	for k, s := range seconds {
		rows = append(rows, schema.SummaryRow{
			Labels:       k.labels,
			IssueSummary: k.summary,
			Author:       k.author,
			IssueStatus:  k.status,
			TotalEfforts: contract.RoundHours(s / 3600),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Labels != b.Labels {
			return a.Labels < b.Labels
		}
		if a.IssueSummary != b.IssueSummary {
			return a.IssueSummary < b.IssueSummary
		}
		if a.Author != b.Author {
			return a.Author < b.Author
		}
		return a.IssueStatus < b.IssueStatus
	})
	return rows
}

// Detailed renders one timesheet row per entry, in input order.
func Detailed(entries []schema.WorklogEntry, baseURL string) []schema.DetailedRow {
	rows := make([]schema.DetailedRow, 0, len(entries))
	for _, e := range entries {
		end := e.StartDate.Add(time.Duration(e.TimeSpentSeconds * float64(time.Second)))
		rows = append(rows, schema.DetailedRow{
			Date:        e.StartDate.Format(contract.TimesheetDayLayout),
			ProjectName: e.ProjectName,
			Comment:     e.Comment,
			Hours:       contract.RoundHours(e.Hours()),
			Category:    e.Labels,
			Ticket:      baseURL + e.IssueKey,
			StartTime:   e.StartDate.Format(contract.ClockLayout),
			EndTime:     end.Format(contract.ClockLayout),
			Status:      e.IssueStatus,
		})
	}
	return rows
}

// SprintClosure builds the capacity, burned effort and feature tables of a sprint.
func SprintClosure(entries []schema.WorklogEntry, holidays []string) schema.SprintClosureReport {
	return schema.SprintClosureReport{
		Capacity: availableCapacity(entries, holidays),
		Labels:   labelColumns(entries),
		Burned:   burnedCapacity(entries),
		Totals:   burnedTotals(entries),
		Features: features(entries),
	}
}

// availableCapacity counts the distinct non-holiday weekdays each author booked on.
func availableCapacity(entries []schema.WorklogEntry, holidays []string) []schema.CapacityRow {
	skip := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		skip[h] = struct{}{}
	}

	days := make(map[string]map[string]struct{})
	for _, e := range entries {
		if wd := e.StartDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		day := e.StartDate.Format(contract.ISODateLayout)
		if _, ok := skip[day]; ok {
			continue
		}
		if days[e.Author] == nil {
			days[e.Author] = make(map[string]struct{})
		}
		days[e.Author][day] = struct{}{}
	}

	rows := make([]schema.CapacityRow, 0, len(days))
	for author, set := range days {
		rows = append(rows, schema.CapacityRow{
			Author:        author,
			WorkingDays:   len(set),
			CapacityHours: float64(len(set)) * contract.DefaultDailyHours,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Author < rows[j].Author })
	return rows
}

// labelColumns returns the sorted labels used as pivot columns.
func labelColumns(entries []schema.WorklogEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		seen[e.Labels] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// burnedCapacity pivots hours into author rows and label columns.
// Cells are rounded first and the grand total sums the rounded cells.
func burnedCapacity(entries []schema.WorklogEntry) []schema.BurnedRow {
	pivot := make(map[string]map[string]float64)
	for _, e := range entries {
		if pivot[e.Author] == nil {
			pivot[e.Author] = make(map[string]float64)
		}
		pivot[e.Author][e.Labels] += e.Hours()
	}

	rows := make([]schema.BurnedRow, 0, len(pivot))
	for author, byLabel := range pivot {
		row := schema.BurnedRow{Author: author, ByLabel: make(map[string]float64, len(byLabel))}
		for label, hours := range byLabel {
			rounded := contract.RoundHours(hours)
			row.ByLabel[label] = rounded
			row.GrandTotal += rounded
		}
		row.GrandTotal = contract.RoundHours(row.GrandTotal)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Author < rows[j].Author })
	return rows
}

// burnedTotals is the Grand Total row of the pivot.
func burnedTotals(entries []schema.WorklogEntry) schema.BurnedRow {
	totals := schema.BurnedRow{Author: schema.GrandTotalLabel, ByLabel: make(map[string]float64)}
	for _, row := range burnedCapacity(entries) {
		for label, hours := range row.ByLabel {
			totals.ByLabel[label] = contract.RoundHours(totals.ByLabel[label] + hours)
		}
		totals.GrandTotal = contract.RoundHours(totals.GrandTotal + row.GrandTotal)
	}
	return totals
}

// features lists distinct deliverables in the order they first appear.
func features(entries []schema.WorklogEntry) []schema.FeatureRow {
	seen := make(map[schema.FeatureRow]struct{})
	rows := make([]schema.FeatureRow, 0)
	for _, e := range entries {
		row := schema.FeatureRow{
			Category:          e.Labels,
			IssueSummary:      e.IssueSummary,
			OriginalEstimate:  e.OriginalEstimate / 3600,
			RemainingEstimate: e.RemainingEstimate / 3600,
			Status:            e.IssueStatus,
			DoneBy:            e.Author,
		}
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		row.Number = len(rows) + 1
		rows = append(rows, row)
	}
	return rows
}
