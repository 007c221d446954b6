package cmd

import (
	"github.com/huangsam/timesheet/core"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/spf13/cobra"
)

// strainCmd synthesizes the workload strain trend.
var strainCmd = &cobra.Command{
	Use:   "strain [worklog]",
	Short: "Show the smoothed workload strain trend per employee.",
	Long: `Aggregate weekly overtime per employee and synthesize a strain trend.

Each employee's current overtime is fed through an exponential moving average
(New Score = Current OT × 0.4 + Previous Score × 0.6). Each data week gets one
back-filled period that ramps toward the current overtime, followed by the
"Current" point. Lines are banded by the current score:
Critical, High Risk, Moderate or Safe.

The input is either a worklog export, a stored snapshot, or a payload JSON
file shaped as {"burnoutData": [...], "weeklyOvertimeData": {...}}.

Examples:
  # Trend from a Jira worklog export
  timesheet strain worklog.xlsx

  # Reproducible trend from a stored snapshot
  timesheet strain --snapshot 6f1c... --seed 42

  # Trend from a precomputed payload, as JSON
  timesheet strain --payload burnout.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: worklogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStrain(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot synthesize strain trend", err)
		}
	},
}
