package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/parquet"
)

// ExecuteHistoryExport writes recorded strain runs and trend points to Parquet files.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no strain history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total strain runs: %d\n", status.TotalRuns)
	fmt.Printf("Total trend points: %d\n", status.TableSizes[trendPointsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve strain runs: %w", err)
	}
	points, err := store.GetAllTrendPoints()
	if err != nil {
		return fmt.Errorf("failed to retrieve trend points: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertStrainRunRecords(runs)
	if err := parquet.WriteStrainRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write strain runs: %w", err)
	}
	fmt.Printf("Exported %d strain runs to: %s\n", len(parquetRuns), runsFile)

	pointsFile := outputFile + ".trend_points.parquet"
	parquetPoints := parquet.ConvertTrendPointRecords(points)
	if err := parquet.WriteTrendPointsParquet(parquetPoints, pointsFile); err != nil {
		return fmt.Errorf("failed to write trend points: %w", err)
	}
	fmt.Printf("Exported %d trend points to: %s\n", len(parquetPoints), pointsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Any other Parquet-compatible tool")
	return nil
}
