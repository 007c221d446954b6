package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// formFeed separates sections that start on a new page.
const formFeed = "\f"

// WriteReport outputs one report kind, dispatching based on the output format configured.
func WriteReport(kind schema.ReportKind, bundle schema.ReportBundle, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	var r renderer
	switch kind {
	case schema.CategoryReport:
		r = renderer{
			data:  bundle.Category,
			csv:   func(w io.Writer) error { return writeCategoryCSV(w, bundle.Category, fmtFloat) },
			xlsx:  func(f *excelize.File) error { return fillCategorySheet(f, bundle.Category) },
			table: func(w io.Writer) error { return writeCategoryTable(w, bundle.Category, fmtFloat) },
		}
	case schema.SummaryReport:
		page := view.Paginate(len(bundle.Summary), cfg.Page, cfg.PerPage)
		r = renderer{
			data:  bundle.Summary,
			csv:   func(w io.Writer) error { return writeSummaryCSV(w, bundle.Summary, fmtFloat) },
			xlsx:  func(f *excelize.File) error { return fillSummarySheet(f, bundle.Summary) },
			table: func(w io.Writer) error { return writeSummaryTable(w, bundle.Summary, page, cfg, fmtFloat) },
		}
	case schema.DetailedReport:
		r = renderer{
			data:  bundle.Detailed,
			csv:   func(w io.Writer) error { return writeDetailedCSV(w, bundle.Detailed, fmtFloat) },
			xlsx:  func(f *excelize.File) error { return fillDetailedSheet(f, bundle.Detailed) },
			table: func(w io.Writer) error { return writeDetailedTable(w, bundle.Detailed, cfg, fmtFloat) },
		}
	case schema.SprintReport:
		r = renderer{
			data:  bundle.Sprint,
			csv:   func(w io.Writer) error { return writeSprintCSV(w, bundle.Sprint, fmtFloat) },
			xlsx:  func(f *excelize.File) error { return fillSprintSheet(f, bundle.Sprint) },
			table: func(w io.Writer) error { return writeSprintTables(w, bundle.Sprint, fmtFloat) },
		}
	case schema.AllReports:
		r = renderer{
			data:  bundle,
			csv:   func(w io.Writer) error { return writeBundleCSV(w, bundle, fmtFloat) },
			xlsx:  func(f *excelize.File) error { return fillBundle(f, bundle) },
			table: func(w io.Writer) error { return writeBundleText(w, bundle, cfg, fmtFloat) },
		}
	default:
		return fmt.Errorf("unsupported report kind: %s", kind)
	}
	return writeOutput(cfg, r)
}

// renderTable writes a header and rows with the shared table look.
func renderTable(w io.Writer, header []string, data [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = align
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCategoryTable writes the category totals table.
func writeCategoryTable(w io.Writer, rows []schema.CategoryTotal, fmtFloat func(float64) string) error {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Category, fmtFloat(r.Hours)})
	}
	return renderTable(w, categoryHeader, data, tw.AlignLeft)
}

// writeSummaryTable writes one page of the summary with the page info line.
func writeSummaryTable(w io.Writer, rows []schema.SummaryRow, page view.Page, cfg *contract.Config, fmtFloat func(float64) string) error {
	summaryWidth := GetMaxTableTextWidth(cfg, 60)
	var data [][]string
	for _, r := range view.Slice(rows, page) {
		data = append(data, []string{
			r.Labels,
			contract.TruncateText(r.IssueSummary, summaryWidth),
			r.Author,
			r.IssueStatus,
			fmtFloat(r.TotalEfforts),
		})
	}
	if err := renderTable(w, summaryHeader, data, tw.AlignLeft); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s (page %d of %d)\n", page.Info, page.Number, max(page.TotalPages, 1))
	return err
}

// writeDetailedTable writes every detailed row.
func writeDetailedTable(w io.Writer, rows []schema.DetailedRow, cfg *contract.Config, fmtFloat func(float64) string) error {
	commentWidth := GetMaxTableTextWidth(cfg, 90)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Date,
			r.ProjectName,
			contract.TruncateText(r.Comment, commentWidth),
			fmtFloat(r.Hours),
			r.Category,
			r.Ticket,
			r.StartTime,
			r.EndTime,
			r.Status,
		})
	}
	return renderTable(w, detailedHeader, data, tw.AlignLeft)
}

// writeSprintTables writes capacity, burned capacity and features one after another.
func writeSprintTables(w io.Writer, report schema.SprintClosureReport, fmtFloat func(float64) string) error {
	if err := writeCapacityTable(w, report, fmtFloat); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Burned Capacity"); err != nil {
		return err
	}
	if err := renderTable(w, burnedHeader(report.Labels), burnedStringRows(report, fmtFloat), tw.AlignRight); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Features and Tech Debt"); err != nil {
		return err
	}
	return renderTable(w, featuresHeader, featureStringRows(report.Features, fmtFloat), tw.AlignLeft)
}

// writeCapacityTable writes the available capacity table.
func writeCapacityTable(w io.Writer, report schema.SprintClosureReport, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintln(w, "Available Capacity"); err != nil {
		return err
	}
	data := make([][]string, 0, len(report.Capacity))
	for _, c := range report.Capacity {
		data = append(data, []string{c.Author, strconv.Itoa(c.WorkingDays), fmtFloat(c.CapacityHours)})
	}
	return renderTable(w, capacityHeader, data, tw.AlignRight)
}

// burnedStringRows formats the pivot rows plus the grand total row.
func burnedStringRows(report schema.SprintClosureReport, fmtFloat func(float64) string) [][]string {
	if len(report.Burned) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(report.Burned)+1)
	for _, b := range slices.Concat(report.Burned, []schema.BurnedRow{report.Totals}) {
		row := []string{b.Author}
		for _, label := range report.Labels {
			row = append(row, fmtFloat(b.ByLabel[label]))
		}
		rows = append(rows, append(row, fmtFloat(b.GrandTotal)))
	}
	return rows
}

// featureStringRows formats the features list.
func featureStringRows(features []schema.FeatureRow, fmtFloat func(float64) string) [][]string {
	rows := make([][]string, 0, len(features))
	for _, f := range features {
		rows = append(rows, []string{
			strconv.Itoa(f.Number),
			f.Category,
			f.IssueSummary,
			fmtFloat(f.OriginalEstimate),
			fmtFloat(f.RemainingEstimate),
			f.Status,
			f.DoneBy,
		})
	}
	return rows
}

// writeCategoryCSV writes the category totals as CSV.
func writeCategoryCSV(w io.Writer, rows []schema.CategoryTotal, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, categoryHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Category, fmtFloat(r.Hours)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSummaryCSV writes every summary row as CSV.
func writeSummaryCSV(w io.Writer, rows []schema.SummaryRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, summaryHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Labels, r.IssueSummary, r.Author, r.IssueStatus, fmtFloat(r.TotalEfforts)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDetailedCSV writes the detailed timesheet as CSV.
func writeDetailedCSV(w io.Writer, rows []schema.DetailedRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, detailedHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{r.Date, r.ProjectName, r.Comment, fmtFloat(r.Hours), r.Category, r.Ticket, r.StartTime, r.EndTime, r.Status}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSprintCSV writes the three sprint tables as CSV, each preceded by a title record.
func writeSprintCSV(w io.Writer, report schema.SprintClosureReport, fmtFloat func(float64) string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	capacity := make([][]string, 0, len(report.Capacity))
	for _, c := range report.Capacity {
		capacity = append(capacity, []string{c.Author, strconv.Itoa(c.WorkingDays), fmtFloat(c.CapacityHours)})
	}
	sections := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{"Available Capacity", capacityHeader, capacity},
		{"Burned Capacity", burnedHeader(report.Labels), burnedStringRows(report, fmtFloat)},
		{"Features and Tech Debt", featuresHeader, featureStringRows(report.Features, fmtFloat)},
	}
	for _, s := range sections {
		if err := cw.Write([]string{s.title}); err != nil {
			return err
		}
		if err := cw.Write(s.header); err != nil {
			return err
		}
		if err := cw.WriteAll(s.rows); err != nil {
			return err
		}
	}
	return cw.Error()
}

// writeBundleCSV writes every report back to back.
func writeBundleCSV(w io.Writer, bundle schema.ReportBundle, fmtFloat func(float64) string) error {
	writers := []func() error{
		func() error { return writeCategoryCSV(w, bundle.Category, fmtFloat) },
		func() error { return writeSummaryCSV(w, bundle.Summary, fmtFloat) },
		func() error { return writeDetailedCSV(w, bundle.Detailed, fmtFloat) },
		func() error { return writeSprintCSV(w, bundle.Sprint, fmtFloat) },
	}
	for _, write := range writers {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

// writeBundleText writes the visible sections of the combined report in layout order.
// Sections with a page break are preceded by a form feed.
func writeBundleText(w io.Writer, bundle schema.ReportBundle, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s\n", heading("🗓️ ", "Timesheet Report", cfg)); err != nil {
		return err
	}
	author := bundle.Author
	if author == "" {
		author = schema.AllAuthors
	}
	if _, err := fmt.Fprintf(w, "Date range: %s\nAuthor: %s\n", bundle.DateRange, author); err != nil {
		return err
	}

	for _, section := range bundle.Layout.Sections {
		if !section.Visible {
			continue
		}
		if section.PageBreakBefore {
			if _, err := fmt.Fprint(w, formFeed); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n== %s ==\n", section.Title); err != nil {
			return err
		}
		if err := writeSection(w, section.ID, bundle, cfg, fmtFloat); err != nil {
			return err
		}
	}
	return nil
}

// writeSection writes the body of one combined report section.
func writeSection(w io.Writer, id string, bundle schema.ReportBundle, cfg *contract.Config, fmtFloat func(float64) string) error {
	switch id {
	case view.CapacitySectionID:
		return writeCapacityTable(w, bundle.Sprint, fmtFloat)
	case view.ResultsSectionID:
		return writeCategoryTable(w, bundle.Category, fmtFloat)
	case view.OvertimeSectionID:
		return writeStrainTable(w, bundle.Strain, cfg, fmtFloat)
	case view.SummarySectionID:
		page := view.Paginate(len(bundle.Summary), 1, max(len(bundle.Summary), 1))
		return writeSummaryTable(w, bundle.Summary, page, cfg, fmtFloat)
	default:
		return fmt.Errorf("unknown report section: %s", id)
	}
}
