package outwriter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/huangsam/timesheet/schema"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new workbook starts with.
const defaultSheet = "Sheet1"

// Sheet names of the exported workbooks.
const (
	detailedSheet = "Detailed Timesheet"
	summarySheet  = "Summary Report"
	sprintSheet   = "Sprint Closure Report"
	categorySheet = "Category Totals"
	strainSheet   = "Strain Trend"
	overtimeSheet = "Weekly Overtime"
)

// Column headers shared by the table, CSV and workbook writers.
var (
	detailedHeader = []string{
		"Date", "Application/Project Name", "Activity/Task Done", "Hours spent",
		"Category", "Ticket/Task #", "Start Time", "End Time", "Status",
	}
	summaryHeader  = []string{"Labels", "Issue Summary", "Author", "Issue Status", "Total Efforts (hrs)"}
	categoryHeader = []string{"Category", "Hours spent"}
	capacityHeader = []string{"Team Member Name", "Working Days", "Available Capacity (Hours)"}
	featuresHeader = []string{"Number", "Category", "Issue Summary", "Original Estimate", "Remaining Estimate", "Status", "Done By"}
	overtimeHeader = []string{"Week", "Date Range", "Regular Hours", "Overtime Hours", "Total Hours"}
)

// WriteXLSXReport writes the workbook for one report kind to w.
func WriteXLSXReport(w io.Writer, kind schema.ReportKind, bundle schema.ReportBundle) error {
	var fill func(*excelize.File) error
	switch kind {
	case schema.DetailedReport:
		fill = func(f *excelize.File) error { return fillDetailedSheet(f, bundle.Detailed) }
	case schema.SummaryReport:
		fill = func(f *excelize.File) error { return fillSummarySheet(f, bundle.Summary) }
	case schema.SprintReport:
		fill = func(f *excelize.File) error { return fillSprintSheet(f, bundle.Sprint) }
	case schema.CategoryReport:
		fill = func(f *excelize.File) error { return fillCategorySheet(f, bundle.Category) }
	case schema.AllReports:
		fill = func(f *excelize.File) error { return fillBundle(f, bundle) }
	default:
		return fmt.Errorf("unsupported report kind: %s", kind)
	}
	return writeWorkbook(w, fill)
}

// DownloadName returns the attachment name of a report workbook.
func DownloadName(kind schema.ReportKind, sourceName string) string {
	switch kind {
	case schema.DetailedReport:
		base := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
		if base == "" || base == "." {
			base = "timesheet"
		}
		return base + "_detailed.xlsx"
	case schema.SummaryReport:
		return "jira_summary.xlsx"
	case schema.SprintReport:
		return "sprint_closure_report.xlsx"
	default:
		return fmt.Sprintf("%s_report.xlsx", kind)
	}
}

// writeWorkbook builds a workbook with fill and streams it to w.
func writeWorkbook(w io.Writer, fill func(*excelize.File) error) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := fill(f); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// addSheet renames the default sheet on first use and appends a new sheet afterwards.
func addSheet(f *excelize.File, name string) error {
	if idx, _ := f.GetSheetIndex(defaultSheet); idx != -1 {
		return f.SetSheetName(defaultSheet, name)
	}
	_, err := f.NewSheet(name)
	return err
}

// headerStyle returns the style of table header cells.
func headerStyle(f *excelize.File) (int, error) {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Border:    []excelize.Border{border("left"), border("top"), border("right"), border("bottom")},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
}

// writeSheetTable writes a header and rows starting at the top-left cell.
// It returns the number of rows written, header included.
func writeSheetTable(f *excelize.File, sheet, topLeft string, header []string, rows [][]any) (int, error) {
	col, row, err := excelize.CellNameToCoordinates(topLeft)
	if err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(sheet, topLeft, &header); err != nil {
		return 0, err
	}
	style, err := headerStyle(f)
	if err != nil {
		return 0, err
	}
	last, err := excelize.CoordinatesToCellName(col+len(header)-1, row)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, topLeft, last, style); err != nil {
		return 0, err
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(col, row+1+i)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return 0, err
		}
	}
	return len(rows) + 1, nil
}

// fillDetailedSheet writes the detailed timesheet.
func fillDetailedSheet(f *excelize.File, rows []schema.DetailedRow) error {
	if err := addSheet(f, detailedSheet); err != nil {
		return err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Date, r.ProjectName, r.Comment, r.Hours, r.Category, r.Ticket, r.StartTime, r.EndTime, r.Status})
	}
	if _, err := writeSheetTable(f, detailedSheet, "A1", detailedHeader, data); err != nil {
		return err
	}
	return f.SetColWidth(detailedSheet, "B", "C", 40)
}

// fillSummarySheet writes the per-task summary.
func fillSummarySheet(f *excelize.File, rows []schema.SummaryRow) error {
	if err := addSheet(f, summarySheet); err != nil {
		return err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Labels, r.IssueSummary, r.Author, r.IssueStatus, r.TotalEfforts})
	}
	if _, err := writeSheetTable(f, summarySheet, "A1", summaryHeader, data); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 50)
}

// fillCategorySheet writes the category totals.
func fillCategorySheet(f *excelize.File, rows []schema.CategoryTotal) error {
	if err := addSheet(f, categorySheet); err != nil {
		return err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Category, r.Hours})
	}
	_, err := writeSheetTable(f, categorySheet, "A1", categoryHeader, data)
	return err
}

// burnedHeader returns the pivot header for the given label columns.
func burnedHeader(labels []string) []string {
	header := append([]string{"Developer"}, labels...)
	return append(header, schema.GrandTotalLabel)
}

// burnedValues flattens one pivot row in label order.
func burnedValues(row schema.BurnedRow, labels []string) []any {
	values := []any{row.Author}
	for _, label := range labels {
		values = append(values, row.ByLabel[label])
	}
	return append(values, row.GrandTotal)
}

// fillSprintSheet lays out the sprint closure report on one sheet:
// a merged title, capacity and burned capacity side by side, then features.
func fillSprintSheet(f *excelize.File, report schema.SprintClosureReport) error {
	if err := addSheet(f, sprintSheet); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.MergeCell(sprintSheet, "A1", "L1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sprintSheet, "A1", sprintSheet); err != nil {
		return err
	}
	if err := f.SetCellStyle(sprintSheet, "A1", "L1", titleStyle); err != nil {
		return err
	}

	capacity := make([][]any, 0, len(report.Capacity))
	for _, c := range report.Capacity {
		capacity = append(capacity, []any{c.Author, c.WorkingDays, c.CapacityHours})
	}
	capacityRows := 0
	if len(capacity) > 0 {
		if capacityRows, err = writeSheetTable(f, sprintSheet, "A4", capacityHeader, capacity); err != nil {
			return err
		}
	}

	burned := make([][]any, 0, len(report.Burned)+1)
	for _, b := range report.Burned {
		burned = append(burned, burnedValues(b, report.Labels))
	}
	burnedRows := 0
	if len(burned) > 0 {
		burned = append(burned, burnedValues(report.Totals, report.Labels))
		if burnedRows, err = writeSheetTable(f, sprintSheet, "E4", burnedHeader(report.Labels), burned); err != nil {
			return err
		}
	}

	if len(report.Features) > 0 {
		data := make([][]any, 0, len(report.Features))
		for _, ft := range report.Features {
			data = append(data, []any{ft.Number, ft.Category, ft.IssueSummary, ft.OriginalEstimate, ft.RemainingEstimate, ft.Status, ft.DoneBy})
		}
		start := 4 + max(capacityRows, burnedRows) + 3
		cell, err := excelize.CoordinatesToCellName(1, start)
		if err != nil {
			return err
		}
		if _, err := writeSheetTable(f, sprintSheet, cell, featuresHeader, data); err != nil {
			return err
		}
	}
	return f.SetColWidth(sprintSheet, "A", "A", 22)
}

// fillStrainSheets writes the synthesized trend and the weekly overtime table.
func fillStrainSheets(f *excelize.File, chart schema.StrainChart) error {
	if err := addSheet(f, strainSheet); err != nil {
		return err
	}
	header := append([]string{"Author", "Line Band", "Current Overtime", "Strain Score"}, chart.Labels...)
	data := make([][]any, 0, len(chart.Series))
	for _, s := range chart.Series {
		values := []any{s.Author, string(s.LineBand), s.CurrentOvertime, s.WorkloadStrainScore}
		for _, p := range s.Points {
			values = append(values, p.EMAScore)
		}
		data = append(data, values)
	}
	if _, err := writeSheetTable(f, strainSheet, "A1", header, data); err != nil {
		return err
	}

	if !hasWeeklyHours(chart.Weekly) {
		return nil
	}
	if err := addSheet(f, overtimeSheet); err != nil {
		return err
	}
	_, err := writeSheetTable(f, overtimeSheet, "A1", overtimeHeader, weeklyRows(chart.Weekly))
	return err
}

// weeklyRows flattens the weekly overtime aggregate into table rows.
func weeklyRows(weekly *schema.WeeklyOvertimeData) [][]any {
	at := func(values []float64, i int) float64 {
		if i < len(values) {
			return values[i]
		}
		return 0
	}
	rows := make([][]any, 0, len(weekly.Weeks))
	for i, week := range weekly.Weeks {
		dateRange := ""
		if i < len(weekly.DateRanges) {
			dateRange = weekly.DateRanges[i]
		}
		rows = append(rows, []any{week, dateRange, at(weekly.ActualHours, i), at(weekly.OvertimeHours, i), at(weekly.TotalHours, i)})
	}
	return rows
}

// fillBundle writes every report into one workbook.
func fillBundle(f *excelize.File, bundle schema.ReportBundle) error {
	fills := []func() error{
		func() error { return fillCategorySheet(f, bundle.Category) },
		func() error { return fillSummarySheet(f, bundle.Summary) },
		func() error { return fillDetailedSheet(f, bundle.Detailed) },
		func() error { return fillSprintSheet(f, bundle.Sprint) },
	}
	if !bundle.Strain.Empty() {
		fills = append(fills, func() error { return fillStrainSheets(f, bundle.Strain) })
	}
	for _, fill := range fills {
		if err := fill(); err != nil {
			return err
		}
	}
	return nil
}
