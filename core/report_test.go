package core

import (
	"testing"
	"time"

	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(day string, hour int, author, labels, summary string, hours float64) schema.WorklogEntry {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return schema.WorklogEntry{
		StartDate:        d.Add(time.Duration(hour) * time.Hour),
		ProjectName:      "Payments",
		Comment:          "work on " + summary,
		Labels:           labels,
		IssueKey:         "PAY-1",
		TimeSpentSeconds: hours * 3600,
		IssueStatus:      "Done",
		IssueSummary:     summary,
		Author:           author,
		OriginalEstimate: 4 * 3600,
	}
}

func sampleEntries() []schema.WorklogEntry {
	return []schema.WorklogEntry{
		entry("2024-03-04", 9, "Alice", "Feature", "Checkout", 2),
		entry("2024-03-05", 9, "Alice", "Feature", "Checkout", 1.5),
		entry("2024-03-05", 13, "Bob", "Bug", "Refund crash", 3),
		entry("2024-03-09", 10, "Bob", "Bug", "Refund crash", 1), // Saturday
		entry("2024-03-11", 9, "Alice", "Support", "On call", 0.25),
	}
}

func TestFilterByAuthor(t *testing.T) {
	entries := sampleEntries()
	assert.Len(t, FilterByAuthor(entries, ""), 5)
	assert.Len(t, FilterByAuthor(entries, schema.AllAuthors), 5)
	assert.Len(t, FilterByAuthor(entries, "Bob"), 2)
	assert.Empty(t, FilterByAuthor(entries, "Carol"))
}

func TestFilterByDateRange(t *testing.T) {
	entries := sampleEntries()
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"open", time.Time{}, time.Time{}, 5},
		{"start only", day("2024-03-05"), time.Time{}, 4},
		{"end inclusive", time.Time{}, day("2024-03-05"), 3},
		{"both", day("2024-03-05"), day("2024-03-09"), 3},
		{"empty window", day("2024-04-01"), day("2024-04-30"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterByDateRange(entries, tt.start, tt.end), tt.want)
		})
	}
}

func TestAuthors(t *testing.T) {
	assert.Equal(t, []string{"Alice", "Bob"}, Authors(sampleEntries()))
	assert.Empty(t, Authors(nil))
}

func TestCategoryTotals(t *testing.T) {
	got := CategoryTotals(sampleEntries())
	assert.Equal(t, []schema.CategoryTotal{
		{Category: "Bug", Hours: 4},
		{Category: "Feature", Hours: 3.5},
		{Category: "Support", Hours: 0.25},
	}, got)
}

func TestSummary(t *testing.T) {
	got := Summary(sampleEntries())
	require.Len(t, got, 3)
	assert.Equal(t, schema.SummaryRow{
		Labels: "Bug", IssueSummary: "Refund crash", Author: "Bob", IssueStatus: "Done", TotalEfforts: 4,
	}, got[0])
	assert.Equal(t, "Checkout", got[1].IssueSummary)
	assert.Equal(t, 3.5, got[1].TotalEfforts)
	assert.Equal(t, "On call", got[2].IssueSummary)
}

func TestDetailed(t *testing.T) {
	got := Detailed(sampleEntries()[:1], "https://jira.example.com/browse/")
	require.Len(t, got, 1)
	assert.Equal(t, schema.DetailedRow{
		Date:        "04/Mar/2024",
		ProjectName: "Payments",
		Comment:     "work on Checkout",
		Hours:       2,
		Category:    "Feature",
		Ticket:      "https://jira.example.com/browse/PAY-1",
		StartTime:   "09:00 AM",
		EndTime:     "11:00 AM",
		Status:      "Done",
	}, got[0])
}

func TestSprintClosure(t *testing.T) {
	report := SprintClosure(sampleEntries(), []string{"2024-03-11"})

	// Alice's 11 March is a holiday and Bob's Saturday is not a working day
	assert.Equal(t, []schema.CapacityRow{
		{Author: "Alice", WorkingDays: 2, CapacityHours: 16},
		{Author: "Bob", WorkingDays: 1, CapacityHours: 8},
	}, report.Capacity)

	assert.Equal(t, []string{"Bug", "Feature", "Support"}, report.Labels)
	require.Len(t, report.Burned, 2)
	assert.Equal(t, "Alice", report.Burned[0].Author)
	assert.Equal(t, 3.5, report.Burned[0].ByLabel["Feature"])
	assert.Equal(t, 3.75, report.Burned[0].GrandTotal)
	assert.Equal(t, 4.0, report.Burned[1].GrandTotal)

	assert.Equal(t, schema.GrandTotalLabel, report.Totals.Author)
	assert.Equal(t, 7.75, report.Totals.GrandTotal)
	assert.Equal(t, 4.0, report.Totals.ByLabel["Bug"])

	require.Len(t, report.Features, 3)
	assert.Equal(t, schema.FeatureRow{
		Number: 1, Category: "Feature", IssueSummary: "Checkout", OriginalEstimate: 4, Status: "Done", DoneBy: "Alice",
	}, report.Features[0])
	assert.Equal(t, 2, report.Features[1].Number)
	assert.Equal(t, "Refund crash", report.Features[1].IssueSummary)
	assert.Equal(t, 3, report.Features[2].Number)
}

func TestSprintClosure_Empty(t *testing.T) {
	report := SprintClosure(nil, nil)
	assert.Empty(t, report.Capacity)
	assert.Empty(t, report.Burned)
	assert.Empty(t, report.Features)
	assert.Zero(t, report.Totals.GrandTotal)
}
