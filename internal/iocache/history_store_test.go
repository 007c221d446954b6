package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries(author string, score float64, band schema.RiskBand) schema.StrainSeries {
	return schema.StrainSeries{
		Author:              author,
		WorkloadStrainScore: score,
		LineBand:            band,
		Points: []schema.TrendPoint{
			{PeriodLabel: "2024-01-01", EMAScore: 1.5, RiskBand: schema.SafeBand},
			{PeriodLabel: schema.CurrentPeriodLabel, EMAScore: 4.9, RiskBand: schema.SafeBand},
		},
	}
}

func newTestHistoryStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"seed": 1})
	assert.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordSeries(1, 0, sampleSeries("A", 1, schema.SafeBand)))
	assert.NoError(t, store.EndRun(1, time.Now(), 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLite(t *testing.T) {
	store := newTestHistoryStore(t)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"author": "All"})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordSeries(runID, 0, sampleSeries("Alice", 9, schema.HighRiskBand)))
	require.NoError(t, store.RecordSeries(runID, 1, sampleSeries("Bob", 2, schema.SafeBand)))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 2))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalEmployees)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"author":"All"}`, *run.ConfigParams)

	points, err := store.GetAllTrendPoints()
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, "Alice", points[0].Author)
	assert.Equal(t, int32(0), points[0].PointIndex)
	assert.Equal(t, "High Risk", points[1].LineBand)
	assert.Equal(t, schema.CurrentPeriodLabel, points[1].PeriodLabel)
	assert.InDelta(t, 4.9, points[1].EMAScore, 1e-9)
	assert.Equal(t, "Bob", points[2].Author)
	assert.Equal(t, int32(1), points[2].SeriesIndex)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 2, status.TotalEmployeesSeen)
	assert.Equal(t, int64(4), status.TableSizes[trendPointsTable])
	assert.Equal(t, int64(1), status.TableSizes[strainRunsTable])
}

func TestHistoryStore_RepeatedAuthor(t *testing.T) {
	store := newTestHistoryStore(t)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordSeries(runID, 0, sampleSeries("Alice", 3, schema.SafeBand)))
	require.NoError(t, store.RecordSeries(runID, 1, sampleSeries("Alice", 8, schema.HighRiskBand)))
	require.NoError(t, store.EndRun(runID, time.Now(), 2))

	points, err := store.GetAllTrendPoints()
	require.NoError(t, err)
	require.Len(t, points, 4)
	for i, p := range points {
		assert.Equal(t, "Alice", p.Author)
		assert.Equal(t, int32(i/2), p.SeriesIndex)
	}
	assert.Equal(t, "High Risk", points[3].LineBand)
}

func TestHistoryStore_EndRunUnknown(t *testing.T) {
	store := newTestHistoryStore(t)
	err := store.EndRun(42, time.Now(), 0)
	assert.ErrorContains(t, err, "run 42")
}

func TestExecuteHistoryExport(t *testing.T) {
	store := newTestHistoryStore(t)
	out := filepath.Join(t.TempDir(), "strain")

	err := ExecuteHistoryExport(store, out)
	assert.ErrorContains(t, err, "no strain history")

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordSeries(runID, 0, sampleSeries("Alice", 3, schema.SafeBand)))
	require.NoError(t, store.EndRun(runID, time.Now(), 1))

	require.NoError(t, ExecuteHistoryExport(store, out))
	for _, suffix := range []string{".runs.parquet", ".trend_points.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteHistoryExport_MissingFile(t *testing.T) {
	assert.ErrorContains(t, ExecuteHistoryExport(&MockHistoryStore{}, ""), "--output-file")
}

func TestExecuteHistoryExport_Mock(t *testing.T) {
	store := &MockHistoryStore{}
	store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", TotalRuns: 1, TableSizes: map[string]int64{}}, nil)
	store.On("GetAllRuns").Return([]schema.StrainRunRecord{{RunID: 1, StartTime: time.Now()}}, nil)
	store.On("GetAllTrendPoints").Return([]schema.TrendPointRecord{{RunID: 1, Author: "A"}}, nil)

	out := filepath.Join(t.TempDir(), "mock")
	require.NoError(t, ExecuteHistoryExport(store, out))
	store.AssertExpectations(t)

	_, err := os.Stat(out + ".runs.parquet")
	assert.NoError(t, err)
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	// Already at latest
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))

	// Store creation still works on a rolled back database
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestMigrateHistory_NoneBackend(t *testing.T) {
	assert.Error(t, MigrateHistory(schema.NoneBackend, "", -1))
}

func TestClearHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clear.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Missing file is fine
	assert.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	assert.Error(t, ClearSnapshots(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearSnapshots(schema.NoneBackend, "", ""))
}
