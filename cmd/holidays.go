package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/huangsam/timesheet/internal/outwriter"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/internal/worklog"
	"github.com/spf13/cobra"
)

// holidaysCmd manages the holiday list used for capacity.
var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Manage the holidays excluded from weekly capacity",
	Long: `Manage the holiday list stored in the snapshot store.

Holidays are skipped when computing weekly and sprint capacity,
so overtime is not inflated in holiday weeks.

Subcommands:
  list     - Show the stored holidays
  toggle   - Add or remove one date
  reset    - Remove every holiday
  import   - Replace the list from an Excel workbook
  calendar - Show a month calendar with holidays marked

Examples:
  timesheet holidays toggle 2024-12-25
  timesheet holidays import holidays.xlsx
  timesheet holidays calendar --month 2024-12`,
}

var holidaysListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show the stored holidays",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		holidays, err := iocache.LoadHolidays(snapshotStore())
		if err != nil {
			contract.LogFatal("Failed to load holidays", err)
		}
		if err := outwriter.WriteHolidays(holidays, cfg); err != nil {
			contract.LogFatal("Failed to write holidays", err)
		}
	},
}

var holidaysToggleCmd = &cobra.Command{
	Use:     "toggle <YYYY-MM-DD>",
	Short:   "Add a holiday, or remove it when already present",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store := snapshotStore()
		holidays, err := iocache.LoadHolidays(store)
		if err != nil {
			contract.LogFatal("Failed to load holidays", err)
		}
		holidays, added, err := view.ToggleHoliday(holidays, args[0])
		if err != nil {
			contract.LogFatal("Cannot toggle holiday", err)
		}
		if _, err := iocache.SaveHolidays(store, holidays); err != nil {
			contract.LogFatal("Failed to save holidays", err)
		}
		if added {
			fmt.Printf("Added holiday %s.\n", args[0])
		} else {
			fmt.Printf("Removed holiday %s.\n", args[0])
		}
	},
}

var holidaysResetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Remove every stored holiday",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if _, err := iocache.SaveHolidays(snapshotStore(), []string{}); err != nil {
			contract.LogFatal("Failed to reset holidays", err)
		}
		fmt.Println("Holidays reset successfully.")
	},
}

var holidaysImportCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Replace the holiday list from an Excel workbook",
	Long: `Read holiday dates from the first column of the first sheet of a workbook.

Header rows and cells that are not dates are skipped.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			contract.LogFatal("Cannot open holiday workbook", err)
		}
		defer func() { _ = f.Close() }()

		parsed, err := worklog.ParseHolidayWorkbook(f)
		if err != nil {
			contract.LogFatal("Cannot read holiday workbook", err)
		}
		saved, err := iocache.SaveHolidays(snapshotStore(), parsed)
		if err != nil {
			contract.LogFatal("Failed to save holidays", err)
		}
		fmt.Printf("Imported %d holidays.\n", len(saved))
	},
}

var holidaysCalendarCmd = &cobra.Command{
	Use:     "calendar",
	Short:   "Show a month calendar with holidays marked",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		holidays, err := iocache.LoadHolidays(snapshotStore())
		if err != nil {
			contract.LogFatal("Failed to load holidays", err)
		}
		weeks := view.Calendar(cfg.Month.Year(), cfg.Month.Month(), holidays)
		if err := outwriter.WriteCalendar(cfg.Month, weeks, cfg); err != nil {
			contract.LogFatal("Failed to write calendar", err)
		}
	},
}
