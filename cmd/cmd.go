// Package cmd defines the command-line interface for timesheet.
package cmd

import (
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(strainCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	reportCmd.AddCommand(reportCategoryCmd)
	reportCmd.AddCommand(reportSummaryCmd)
	reportCmd.AddCommand(reportDetailedCmd)
	reportCmd.AddCommand(reportSprintCmd)
	reportCmd.AddCommand(reportAllCmd)

	holidaysCmd.AddCommand(holidaysListCmd)
	holidaysCmd.AddCommand(holidaysToggleCmd)
	holidaysCmd.AddCommand(holidaysResetCmd)
	holidaysCmd.AddCommand(holidaysImportCmd)
	holidaysCmd.AddCommand(holidaysCalendarCmd)

	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)
	snapshotCmd.AddCommand(snapshotRemoveCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)

	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)

	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("snapshot", "", "ID of a stored worklog snapshot to use instead of a file")
	rootCmd.PersistentFlags().StringP("author", "a", "", "Only include this author")
	rootCmd.PersistentFlags().String("base-url", "", "Issue tracker URL prefix for ticket links (e.g., https://jira.example.com/browse/)")
	rootCmd.PersistentFlags().String("start", "", "Only include worklogs on or after this date")
	rootCmd.PersistentFlags().String("end", "", "Only include worklogs on or before this date")
	rootCmd.PersistentFlags().Float64("daily-hours", contract.DefaultDailyHours, "Working hours per weekday used for capacity")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("snapshot-max-age", "1 hour", "Age after which stored worklogs are pruned")
	rootCmd.PersistentFlags().String("history-backend", "", "Strain history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for strain history (must differ from snapshot-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of strainCmd to Viper
	strainCmd.Flags().String("payload", "", "Path to a burnout payload JSON file")
	strainCmd.Flags().Uint64("seed", 0, "Seed of the noise source (0 = time based)")
	if err := viper.BindPFlags(strainCmd.Flags()); err != nil {
		contract.LogFatal("Error binding strain flags", err)
	}

	// Bind all persistent flags of reportCmd to Viper
	reportCmd.PersistentFlags().Int("page", 1, "Summary page to show in text mode")
	reportCmd.PersistentFlags().Int("per-page", contract.DefaultPerPage, "Summary rows per page in text mode")
	if err := viper.BindPFlags(reportCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of holidaysCalendarCmd to Viper
	holidaysCalendarCmd.Flags().String("month", "", "Month to show as YYYY-MM (default current month)")
	if err := viper.BindPFlags(holidaysCalendarCmd.Flags()); err != nil {
		contract.LogFatal("Error binding calendar flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
