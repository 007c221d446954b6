// Package parquet exports strain run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/timesheet/schema"
	"github.com/parquet-go/parquet-go"
)

// StrainRun is one recorded strain computation.
// This struct maps to the strain_runs database table.
type StrainRun struct {
	RunID     int64      `parquet:"run_id,snappy"`
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs stays null for runs that never finished
	RunDurationMs  *int32  `parquet:"run_duration_ms,optional,snappy"`
	TotalEmployees int32   `parquet:"total_employees,snappy"`
	ConfigParams   *string `parquet:"config_params,optional,snappy"`
}

// TrendPoint is one smoothed point of an employee's trend within a run.
// This struct maps to the strain_trend_points database table.
type TrendPoint struct {
	RunID               int64   `parquet:"run_id,snappy"`
	SeriesIndex         int32   `parquet:"series_index,snappy"`
	Author              string  `parquet:"author,snappy"`
	PointIndex          int32   `parquet:"point_index,snappy"`
	PeriodLabel         string  `parquet:"period_label,snappy"`
	EMAScore            float64 `parquet:"ema_score,snappy"`
	RiskBand            string  `parquet:"risk_band,snappy"`
	LineBand            string  `parquet:"line_band,snappy"`
	WorkloadStrainScore float64 `parquet:"workload_strain_score,snappy"`
}

// WriteStrainRunsParquet writes strain runs to a Parquet file.
func WriteStrainRunsParquet(data []StrainRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTrendPointsParquet writes trend points to a Parquet file.
func WriteTrendPointsParquet(data []TrendPoint, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows of T with the schema inferred from its struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertStrainRunRecords converts stored runs for Parquet export.
func ConvertStrainRunRecords(records []schema.StrainRunRecord) []StrainRun {
	result := make([]StrainRun, len(records))
	for i, record := range records {
		result[i] = StrainRun{
			RunID:          record.RunID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalEmployees: record.TotalEmployees,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertTrendPointRecords converts stored trend points for Parquet export.
func ConvertTrendPointRecords(records []schema.TrendPointRecord) []TrendPoint {
	result := make([]TrendPoint, len(records))
	for i, record := range records {
		result[i] = TrendPoint(record)
	}
	return result
}
