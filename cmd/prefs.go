package cmd

import (
	"fmt"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/spf13/cobra"
)

// prefsCmd manages the report layout preferences.
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read or set report layout preferences",
	Long: `Read or set the preferences that control the report layout.

Preferences:
  overtimeUIEnabled          - Show the weekly overtime section
  availableCapacityUIEnabled - Show the available capacity section

Both decide where page breaks fall in the printed report.

Examples:
  timesheet prefs get overtimeUIEnabled
  timesheet prefs set availableCapacityUIEnabled false`,
}

var prefsGetCmd = &cobra.Command{
	Use:     "get <name>",
	Short:   "Print a preference (true, false, or unset)",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		value, err := iocache.LoadPreference(snapshotStore(), args[0])
		if err != nil {
			contract.LogFatal("Failed to read preference", err)
		}
		if value == "" {
			value = "unset"
		}
		fmt.Printf("%s = %s\n", args[0], value)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:     "set <name> <true|false>",
	Short:   "Store a preference",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		enabled, err := contract.ParseBoolString(args[1])
		if err != nil {
			contract.LogFatal("Invalid preference value", err)
		}
		if err := iocache.SavePreference(snapshotStore(), args[0], enabled); err != nil {
			contract.LogFatal("Failed to save preference", err)
		}
		fmt.Printf("%s = %t\n", args[0], enabled)
	},
}
