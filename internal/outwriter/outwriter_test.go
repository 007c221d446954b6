package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testConfig() *contract.Config {
	return &contract.Config{Precision: 2, Width: 160, Output: schema.TextOut, Page: 1, PerPage: 2}
}

func sampleChart() schema.StrainChart {
	weekly := &schema.WeeklyOvertimeData{
		Weeks:         []string{"2024-01-01"},
		DateRanges:    []string{"01/01/2024 - 07/01/2024"},
		ActualHours:   []float64{40},
		OvertimeHours: []float64{10},
		TotalHours:    []float64{50},
	}
	return schema.StrainChart{
		Labels: []string{"2024-01-01", schema.CurrentPeriodLabel},
		Series: []schema.StrainSeries{{
			Author:              "Alice",
			CurrentOvertime:     10,
			WorkloadStrainScore: 13,
			LineBand:            schema.CriticalBand,
			LineColor:           schema.CriticalBand.Color(),
			BackgroundColor:     schema.CriticalBand.BackgroundColor(),
			Points: []schema.TrendPoint{
				{PeriodLabel: "2024-01-01", EMAScore: 2, RiskBand: schema.SafeBand},
				{PeriodLabel: schema.CurrentPeriodLabel, EMAScore: 5.2, RiskBand: schema.ModerateBand},
			},
		}},
		YAxisMax: 20,
		Formula:  schema.EMAFormula,
		Weekly:   weekly,
	}
}

func sampleBundle() schema.ReportBundle {
	return schema.ReportBundle{
		DateRange: "No date range selected",
		Category:  []schema.CategoryTotal{{Category: "Feature", Hours: 7.5}, {Category: "Support", Hours: 1}},
		Summary: []schema.SummaryRow{
			{Labels: "Feature", IssueSummary: "Login", Author: "Alice", IssueStatus: "Done", TotalEfforts: 4},
			{Labels: "Feature", IssueSummary: "Logout", Author: "Bob", IssueStatus: "Done", TotalEfforts: 3.5},
			{Labels: "Support", IssueSummary: "Ticket", Author: "Bob", IssueStatus: "Open", TotalEfforts: 1},
		},
		Detailed: []schema.DetailedRow{{
			Date: "02/Jan/2024", ProjectName: "Web", Comment: "Built login", Hours: 4, Category: "Feature",
			Ticket: "https://jira/browse/WEB-1", StartTime: "09:00 AM", EndTime: "01:00 PM", Status: "Done",
		}},
		Sprint: schema.SprintClosureReport{
			Capacity: []schema.CapacityRow{{Author: "Alice", WorkingDays: 2, CapacityHours: 16}},
			Labels:   []string{"Feature"},
			Burned:   []schema.BurnedRow{{Author: "Alice", ByLabel: map[string]float64{"Feature": 4}, GrandTotal: 4}},
			Totals:   schema.BurnedRow{Author: schema.GrandTotalLabel, ByLabel: map[string]float64{"Feature": 4}, GrandTotal: 4},
			Features: []schema.FeatureRow{{Number: 1, Category: "Feature", IssueSummary: "Login", OriginalEstimate: 8, Status: "Done", DoneBy: "Alice"}},
		},
		Strain: sampleChart(),
		Layout: view.PageBreaks("true", "true"),
	}
}

func TestWriteStrainTable(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	require.NoError(t, writeStrainTable(&buf, sampleChart(), testConfig(), fmtFloat))

	out := buf.String()
	assert.Contains(t, out, "Workload Strain Trend")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "Formula: "+schema.EMAFormula)
	assert.Contains(t, out, "Y-axis max: 20.00")
	assert.Contains(t, out, "01/01/2024 - 07/01/2024")

	rows := pointRows(out)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "2.00")
	assert.Contains(t, rows[0], "Safe")
	assert.Contains(t, rows[1], "Current")
	assert.Contains(t, rows[1], "5.20")
	assert.Contains(t, rows[1], "Moderate")
}

// pointRows returns the table lines of the trend point table.
func pointRows(out string) []string {
	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Alice") && (strings.Contains(line, "2024-01-01") || strings.Contains(line, schema.CurrentPeriodLabel)) {
			rows = append(rows, line)
		}
	}
	return rows
}

func TestWriteStrainTable_EveryPointShown(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	chart := sampleChart()
	weeks := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29", "2024-02-05"}
	chart.Labels = append(append([]string{}, weeks...), schema.CurrentPeriodLabel)
	chart.Series[0].Points = nil
	for i, label := range chart.Labels {
		chart.Series[0].Points = append(chart.Series[0].Points, schema.TrendPoint{
			PeriodLabel: label,
			EMAScore:    float64(i) + 0.25,
			RiskBand:    schema.SafeBand,
		})
	}
	cfg := testConfig()
	cfg.Width = 80

	var buf bytes.Buffer
	require.NoError(t, writeStrainTable(&buf, chart, cfg, fmtFloat))
	out := buf.String()
	for i, label := range chart.Labels {
		assert.Contains(t, out, label)
		assert.Contains(t, out, fmtFloat(float64(i)+0.25))
	}
	assert.NotContains(t, out, "...")
}

func TestWriteStrainTable_WeeksWithoutHours(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	chart := sampleChart()
	chart.Weekly = &schema.WeeklyOvertimeData{Weeks: []string{"2024-01-01"}}

	var buf bytes.Buffer
	require.NoError(t, writeStrainTable(&buf, chart, testConfig(), fmtFloat))
	assert.NotContains(t, buf.String(), "Weekly Overtime")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, fillStrainSheets(f, chart))
	assert.NotContains(t, f.GetSheetList(), overtimeSheet)
	assert.Contains(t, f.GetSheetList(), strainSheet)
}

func TestWriteStrainTable_Empty(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	require.NoError(t, writeStrainTable(&buf, schema.StrainChart{}, testConfig(), fmtFloat))
	assert.Contains(t, buf.String(), noStrainData)
}

func TestWriteStrainCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeStrainCSV(&buf, sampleChart(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "author", records[0][0])
	assert.Equal(t, []string{"Alice", "1", "Current", "5.2", "Moderate", "Critical", "13.0", "10.0"}, records[2])
}

func TestWriteStrainChart_JSONFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "strain.json")

	require.NoError(t, WriteStrainChart(sampleChart(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded schema.StrainChart
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleChart(), decoded)
}

func TestWriteReport_Summary(t *testing.T) {
	cfg := testConfig()
	cfg.Page = 2
	cfg.OutputFile = filepath.Join(t.TempDir(), "summary.txt")

	require.NoError(t, WriteReport(schema.SummaryReport, sampleBundle(), cfg))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Ticket")
	assert.NotContains(t, out, "Logout")
	assert.Contains(t, out, "Showing 3–3 of 3 entries (page 2 of 2)")
}

func TestWriteReport_Unsupported(t *testing.T) {
	assert.Error(t, WriteReport(schema.ReportKind("pdf"), sampleBundle(), testConfig()))
}

func TestWriteReport_CalendarXLSXUnsupported(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.XLSXOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "cal.xlsx")
	err := WriteCalendar(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), view.Calendar(2024, time.March, nil), cfg)
	assert.ErrorContains(t, err, "not supported")
}

func TestWriteSprintCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	require.NoError(t, writeSprintCSV(&buf, sampleBundle().Sprint, fmtFloat))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Available Capacity"}, records[0])
	assert.Equal(t, capacityHeader, records[1])
	assert.Equal(t, []string{"Alice", "2", "16.00"}, records[2])
	assert.Equal(t, []string{"Burned Capacity"}, records[3])
	assert.Equal(t, []string{"Developer", "Feature", "Grand Total"}, records[4])
	assert.Equal(t, []string{"Grand Total", "4.00", "4.00"}, records[6])
	assert.Equal(t, []string{"Features and Tech Debt"}, records[7])
	assert.Equal(t, "Login", records[9][2])
}

func TestWriteBundleText_PageBreaks(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	tests := []struct {
		name         string
		capacity     string
		overtime     string
		wantFeeds    int
		wantCapacity bool
		wantOvertime bool
	}{
		{"both on", "true", "true", 1, true, true},
		{"capacity only", "true", "false", 1, true, false},
		{"overtime only", "false", "true", 1, false, true},
		{"both off", "false", "false", 1, false, false},
		{"unset", "", "", 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := sampleBundle()
			bundle.Layout = view.PageBreaks(tt.capacity, tt.overtime)

			var buf bytes.Buffer
			require.NoError(t, writeBundleText(&buf, bundle, testConfig(), fmtFloat))
			out := buf.String()

			assert.Equal(t, tt.wantFeeds, strings.Count(out, formFeed))
			assert.Equal(t, tt.wantCapacity, strings.Contains(out, "== Available Capacity =="))
			assert.Equal(t, tt.wantOvertime, strings.Contains(out, "Workload Strain Trend"))
			assert.Contains(t, out, "Author: All")
		})
	}
}

func TestWriteXLSXReport(t *testing.T) {
	tests := []struct {
		kind   schema.ReportKind
		sheets []string
	}{
		{schema.DetailedReport, []string{detailedSheet}},
		{schema.SummaryReport, []string{summarySheet}},
		{schema.SprintReport, []string{sprintSheet}},
		{schema.CategoryReport, []string{categorySheet}},
		{schema.AllReports, []string{categorySheet, summarySheet, detailedSheet, sprintSheet, strainSheet, overtimeSheet}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteXLSXReport(&buf, tt.kind, sampleBundle()))

			f, err := excelize.OpenReader(&buf)
			require.NoError(t, err)
			defer func() { _ = f.Close() }()
			assert.Equal(t, tt.sheets, f.GetSheetList())
		})
	}

	assert.Error(t, WriteXLSXReport(&bytes.Buffer{}, schema.ReportKind("bad"), sampleBundle()))
}

func TestWriteXLSXReport_SprintLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXReport(&buf, schema.SprintReport, sampleBundle()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(sprintSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, sprintSheet, title)

	capacityHead, err := f.GetCellValue(sprintSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Team Member Name", capacityHead)

	burnedHead, err := f.GetCellValue(sprintSheet, "E4")
	require.NoError(t, err)
	assert.Equal(t, "Developer", burnedHead)

	// Burned is the taller table with its totals row, features start three rows below it
	featuresHead, err := f.GetCellValue(sprintSheet, "A10")
	require.NoError(t, err)
	assert.Equal(t, "Number", featuresHead)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "sprint-12_detailed.xlsx", DownloadName(schema.DetailedReport, "uploads/sprint-12.csv"))
	assert.Equal(t, "timesheet_detailed.xlsx", DownloadName(schema.DetailedReport, ""))
	assert.Equal(t, "jira_summary.xlsx", DownloadName(schema.SummaryReport, "x.csv"))
	assert.Equal(t, "sprint_closure_report.xlsx", DownloadName(schema.SprintReport, "x.csv"))
}

func TestWriteHolidays(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "holidays.csv")

	require.NoError(t, WriteHolidays([]string{"2024-12-25"}, cfg))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "date,weekday\n2024-12-25,Wednesday\n", string(data))
}

func TestWriteCalendarTable(t *testing.T) {
	var buf bytes.Buffer
	weeks := view.Calendar(2024, time.December, []string{"2024-12-25"})
	require.NoError(t, writeCalendarTable(&buf, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), weeks, testConfig()))

	out := buf.String()
	assert.Contains(t, out, "December 2024")
	assert.Contains(t, out, "25*")
	assert.Contains(t, out, "SUN")
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, "Monday", weekdayOf("2024-01-01"))
	assert.Equal(t, "", weekdayOf("not-a-date"))
}

func TestGetMaxTableTextWidth(t *testing.T) {
	cfg := testConfig()
	cfg.Width = 200
	assert.Equal(t, 70, GetMaxTableTextWidth(cfg, 50))
	cfg.Width = 90
	assert.Equal(t, 20, GetMaxTableTextWidth(cfg, 50))
	cfg.Width = 40
	assert.Equal(t, 15, GetMaxTableTextWidth(cfg, 50))
}
