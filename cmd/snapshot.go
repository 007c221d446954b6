package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
	"github.com/huangsam/timesheet/internal/worklog"
	"github.com/huangsam/timesheet/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotClearSetupWrapper loads only the snapshot backend settings.
// Clearing must work even when the store cannot be opened.
func snapshotClearSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend, err := contract.ParseBackend(viper.GetString("snapshot-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("snapshot-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetSnapshotDBFilePath()
	}
	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotCmd manages stored worklog snapshots.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored worklog snapshots",
	Long: `Manage worklogs stored in the snapshot store.

A snapshot keeps a parsed worklog with its base URL, so later reports and
strain trends can use --snapshot <id> instead of re-reading the export.
Snapshots older than --snapshot-max-age are pruned.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  import - Store a worklog and print its id
  status - Show store statistics and snapshot ids
  prune  - Delete snapshots older than --snapshot-max-age
  remove - Delete one snapshot
  clear  - Remove all stored data`,
}

var snapshotImportCmd = &cobra.Command{
	Use:     "import <worklog>",
	Short:   "Store a worklog export as a snapshot",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		entries, err := worklog.NewLoader().Load(args[0])
		if err != nil {
			contract.LogFatal("Cannot read worklog", err)
		}
		snap, err := iocache.SaveWorklog(snapshotStore(), filepath.Base(args[0]), cfg.BaseURL, entries)
		if err != nil {
			contract.LogFatal("Failed to store snapshot", err)
		}
		if _, err := iocache.MaybePruneSnapshots(snapshotStore(), cfg.SnapshotMaxAge, time.Now()); err != nil {
			contract.LogWarn("Snapshot cleanup failed", err)
		}
		fmt.Printf("Stored %d entries as snapshot %s\n", len(snap.Entries), snap.ID)
	},
}

var snapshotStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display snapshot statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := snapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get snapshot status", fmt.Errorf("snapshot store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintSnapshotStatus(status)

		ids, err := iocache.ListWorklogs(store)
		if err != nil {
			contract.LogFatal("Failed to list snapshots", err)
		}
		for _, id := range ids {
			fmt.Printf("  %s\n", id)
		}
	},
}

var snapshotPruneCmd = &cobra.Command{
	Use:     "prune",
	Short:   "Delete snapshots older than --snapshot-max-age",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		n, err := iocache.PruneSnapshots(snapshotStore(), cfg.SnapshotMaxAge, time.Now())
		if err != nil {
			contract.LogFatal("Failed to prune snapshots", err)
		}
		fmt.Printf("Pruned %d snapshots older than %s.\n", n, cfg.SnapshotMaxAge)
	},
}

var snapshotRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Delete one snapshot",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := iocache.RemoveWorklog(snapshotStore(), args[0]); err != nil {
			contract.LogFatal("Failed to remove snapshot", err)
		}
		fmt.Printf("Removed snapshot %s.\n", args[0])
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all snapshots, holidays and preferences",
	Long: `Delete all stored data from the snapshot backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot table

Examples:
  # Clear MySQL snapshots (set connection string via env variable)
  TIMESHEET_SNAPSHOT_BACKEND=mysql TIMESHEET_SNAPSHOT_DB_CONNECT="..." timesheet snapshot clear`,
	Args:    cobra.NoArgs,
	PreRunE: snapshotClearSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
		fmt.Println("Snapshots cleared successfully.")
	},
}
