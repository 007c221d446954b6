package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// noStrainData is printed in place of an empty chart.
const noStrainData = "No workload strain data available."

// WriteStrainChart outputs the strain chart, dispatching based on the output format configured.
func WriteStrainChart(chart schema.StrainChart, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeOutput(cfg, renderer{
		data: chart,
		csv: func(w io.Writer) error {
			return writeStrainCSV(w, chart, fmtFloat)
		},
		xlsx: func(f *excelize.File) error {
			return fillStrainSheets(f, chart)
		},
		table: func(w io.Writer) error {
			return writeStrainTable(w, chart, cfg, fmtFloat)
		},
	})
}

// bandLabel returns the band text, colored when colors are enabled.
func bandLabel(band schema.RiskBand, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(band)
	}
	return string(band)
}

// heading prefixes a title with an emoji when emojis are enabled.
func heading(emoji, title string, cfg *contract.Config) string {
	if cfg.UseEmojis {
		return emoji + " " + title
	}
	return title
}

// writeStrainTable writes one summary row per employee, then every trend point with its band.
func writeStrainTable(w io.Writer, chart schema.StrainChart, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintln(w, heading("📈", "Workload Strain Trend", cfg)); err != nil {
		return err
	}
	if chart.Empty() {
		_, err := fmt.Fprintln(w, noStrainData)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Author", "Current OT", "Strain Score", "Band"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, s := range chart.Series {
		data = append(data, []string{
			s.Author,
			fmtFloat(s.CurrentOvertime),
			fmtFloat(s.WorkloadStrainScore),
			bandLabel(s.LineBand, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if err := writeTrendPointsTable(w, chart, cfg, fmtFloat); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Formula: %s\n", chart.Formula); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Y-axis max: %s\n", fmtFloat(chart.YAxisMax)); err != nil {
		return err
	}

	if !hasWeeklyHours(chart.Weekly) {
		return nil
	}
	if _, err := fmt.Fprintln(w, heading("⏱️ ", "Weekly Overtime", cfg)); err != nil {
		return err
	}
	return writeOvertimeTable(w, chart.Weekly, fmtFloat)
}

// writeTrendPointsTable writes one row per trend point, in series order.
func writeTrendPointsTable(w io.Writer, chart schema.StrainChart, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Author", "Period", "EMA Score", "Band"})
	var data [][]string
	for _, s := range chart.Series {
		for _, p := range s.Points {
			data = append(data, []string{
				s.Author,
				p.PeriodLabel,
				fmtFloat(p.EMAScore),
				bandLabel(p.RiskBand, cfg),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// hasWeeklyHours reports whether the weekly aggregate carries hours worth a table.
// Payload input may name weeks without any hour arrays.
func hasWeeklyHours(weekly *schema.WeeklyOvertimeData) bool {
	return weekly != nil && len(weekly.Weeks) > 0 && len(weekly.TotalHours) > 0
}

// writeOvertimeTable writes the team-wide weekly hours.
func writeOvertimeTable(w io.Writer, weekly *schema.WeeklyOvertimeData, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header(overtimeHeader)
	var data [][]string
	for _, row := range weeklyRows(weekly) {
		data = append(data, []string{
			row[0].(string),
			row[1].(string),
			fmtFloat(row[2].(float64)),
			fmtFloat(row[3].(float64)),
			fmtFloat(row[4].(float64)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeStrainCSV writes one record per trend point.
func writeStrainCSV(w io.Writer, chart schema.StrainChart, fmtFloat func(float64) string) error {
	header := []string{
		"author",
		"point_index",
		"period_label",
		"ema_score",
		"risk_band",
		"line_band",
		"workload_strain_score",
		"current_overtime",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range chart.Series {
			for i, p := range s.Points {
				rec := []string{
					s.Author,
					fmt.Sprintf("%d", i),
					p.PeriodLabel,
					fmtFloat(p.EMAScore),
					string(p.RiskBand),
					string(s.LineBand),
					fmtFloat(s.WorkloadStrainScore),
					fmtFloat(s.CurrentOvertime),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
