package cmd

import (
	"fmt"

	"github.com/huangsam/timesheet/core"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
	"github.com/spf13/cobra"
)

// reportCmd groups the timesheet reports.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build timesheet reports from a worklog.",
	Long: `Build timesheet reports from a worklog export or a stored snapshot.

Subcommands:
  category - Hours per label
  summary  - Hours per author, issue and status (paginated in text mode)
  detailed - One row per worklog entry with ticket links
  sprint   - Sprint closure report with capacity per team member
  all      - Every report plus the strain chart

Examples:
  # Summary for one author
  timesheet report summary worklog.csv --author "Alice"

  # Second page of the summary
  timesheet report summary worklog.csv --page 2 --per-page 25

  # Sprint closure workbook
  timesheet report sprint worklog.xlsx --output xlsx --output-file sprint.xlsx`,
}

// newReportCmd builds the subcommand for one report kind.
func newReportCmd(kind schema.ReportKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:     fmt.Sprintf("%s [worklog]", kind),
		Short:   short,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: worklogSetupWrapper,
		Run: func(_ *cobra.Command, _ []string) {
			if err := core.ExecuteReport(kind)(rootCtx, cfg, storeManager); err != nil {
				contract.LogFatal(fmt.Sprintf("Cannot build %s report", kind), err)
			}
		},
	}
}

var (
	reportCategoryCmd = newReportCmd(schema.CategoryReport, "Show total hours per label.")
	reportSummaryCmd  = newReportCmd(schema.SummaryReport, "Show hours per author, issue and status.")
	reportDetailedCmd = newReportCmd(schema.DetailedReport, "Show every worklog entry.")
	reportSprintCmd   = newReportCmd(schema.SprintReport, "Show the sprint closure report.")
	reportAllCmd      = newReportCmd(schema.AllReports, "Show every report and the strain chart.")
)
