package schema

import "time"

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	WorklogEntries  int       `json:"worklog_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the strain history store.
type HistoryStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalRuns          int              `json:"total_runs"`
	LastRunID          int64            `json:"last_run_id"`
	LastRunTime        time.Time        `json:"last_run_time"`
	OldestRunTime      time.Time        `json:"oldest_run_time"`
	TotalEmployeesSeen int              `json:"total_employees_seen"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// StrainRunRecord represents a row from the strain_runs table.
type StrainRunRecord struct {
	RunID          int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalEmployees int32
	ConfigParams   *string
}

// TrendPointRecord represents a row from the strain_trend_points table.
type TrendPointRecord struct {
	RunID               int64
	SeriesIndex         int32
	Author              string
	PointIndex          int32
	PeriodLabel         string
	EMAScore            float64
	RiskBand            string
	LineBand            string
	WorkloadStrainScore float64
}
