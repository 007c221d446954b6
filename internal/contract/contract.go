// Package contract provides interfaces and shared utilities for the timesheet CLI's internal architecture.
package contract

import (
	"io"
	"time"

	"github.com/huangsam/timesheet/schema"
)

// WorklogLoader reads worklog entries from a file or an upload.
// This allows the ingest layer to be mocked for testing.
type WorklogLoader interface {
	Load(path string) ([]schema.WorklogEntry, error)
	LoadReader(r io.Reader, name string) ([]schema.WorklogEntry, error)
}

// StoreManager defines the interface for managing the durable stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetHistoryStore() HistoryStore
}

// SnapshotStore defines the interface for key/value snapshot storage.
// Uploaded worklogs, holidays and preferences all live here.
type SnapshotStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	PruneBefore(prefix string, cutoff int64) (int64, error)
	GetStatus() (schema.SnapshotStatus, error)
	Close() error
}

// HistoryStore defines the interface for strain run tracking.
type HistoryStore interface {
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)
	RecordSeries(runID int64, seriesIndex int, series schema.StrainSeries) error
	EndRun(runID int64, endTime time.Time, totalEmployees int) error
	GetStatus() (schema.HistoryStatus, error)
	GetAllRuns() ([]schema.StrainRunRecord, error)
	GetAllTrendPoints() ([]schema.TrendPointRecord, error)
	Close() error
}
