package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// Table names for strain run tracking.
const (
	strainRunsTable  = "strain_runs"
	trendPointsTable = "strain_trend_points"
)

// HistoryStoreImpl records every synthesized strain chart.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history tables for the backend, creating them if needed.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run and trend point tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{strainRunsTable, strainRunsQuery(backend)},
		{trendPointsTable, trendPointsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// strainRunsQuery returns the CREATE TABLE query for strain_runs.
func strainRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(strainRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_employees INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_employees INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_employees INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// trendPointsQuery returns the CREATE TABLE query for strain_trend_points.
func trendPointsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(trendPointsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_index INT NOT NULL,
				author VARCHAR(255) NOT NULL,
				point_index INT NOT NULL,
				period_label VARCHAR(255) NOT NULL,
				ema_score DOUBLE NOT NULL,
				risk_band VARCHAR(16) NOT NULL,
				line_band VARCHAR(16) NOT NULL,
				workload_strain_score DOUBLE NOT NULL,
				PRIMARY KEY (run_id, series_index, point_index)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_index INT NOT NULL,
				author TEXT NOT NULL,
				point_index INT NOT NULL,
				period_label TEXT NOT NULL,
				ema_score DOUBLE PRECISION NOT NULL,
				risk_band TEXT NOT NULL,
				line_band TEXT NOT NULL,
				workload_strain_score DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, series_index, point_index)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				series_index INTEGER NOT NULL,
				author TEXT NOT NULL,
				point_index INTEGER NOT NULL,
				period_label TEXT NOT NULL,
				ema_score REAL NOT NULL,
				risk_band TEXT NOT NULL,
				line_band TEXT NOT NULL,
				workload_strain_score REAL NOT NULL,
				PRIMARY KEY (run_id, series_index, point_index)
			);
		`, quoted)
	}
}

// disabled reports whether the store records nothing.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new strain run and returns its ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(strainRunsTable, hs.backend)
	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quoted)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert strain run: %w", err)
	}
	return runID, nil
}

// RecordSeries stores every trend point of one employee series in a single transaction.
// seriesIndex is the position of the series in the chart, so repeated authors keep their own rows.
func (hs *HistoryStoreImpl) RecordSeries(runID int64, seriesIndex int, series schema.StrainSeries) error {
	if hs.disabled() {
		return nil
	}

	ph := placeholders(hs.backend, 9)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, series_index, author, point_index, period_label, ema_score, risk_band, line_band, workload_strain_score)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quoteTableName(trendPointsTable, hs.backend)}, ph...)...)

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, point := range series.Points {
		if _, err := tx.Exec(query,
			runID, seriesIndex, series.Author, i, point.PeriodLabel, point.EMAScore,
			string(point.RiskBand), string(series.LineBand), series.WorkloadStrainScore,
		); err != nil {
			return fmt.Errorf("failed to insert trend point %d for %s: %w", i, series.Author, err)
		}
	}
	return tx.Commit()
}

// EndRun updates the strain run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalEmployees int) error {
	if hs.disabled() {
		return nil
	}

	quoted := quoteTableName(strainRunsTable, hs.backend)
	ph := placeholders(hs.backend, 4)

	start := timeScanner{backend: hs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, ph[0])
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_employees = %s WHERE run_id = %s`,
		quoted, ph[0], ph[1], ph[2], ph[3])
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalEmployees, runID); err != nil {
		return fmt.Errorf("failed to update strain run: %w", err)
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(strainRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		authorsQuery := fmt.Sprintf("SELECT COUNT(DISTINCT author) FROM %s", quoteTableName(trendPointsTable, hs.backend))
		if err := hs.db.QueryRow(authorsQuery).Scan(&status.TotalEmployeesSeen); err != nil {
			return status, fmt.Errorf("failed to count employees: %w", err)
		}
	}

	for _, table := range []string{strainRunsTable, trendPointsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all strain runs, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.StrainRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_employees, config_params FROM %s ORDER BY run_id",
		quoteTableName(strainRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query strain runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StrainRunRecord
	for rows.Next() {
		var record schema.StrainRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &record.RunDurationMs, &record.TotalEmployees, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan strain run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// GetAllTrendPoints retrieves every recorded trend point in run, series, index order.
func (hs *HistoryStoreImpl) GetAllTrendPoints() ([]schema.TrendPointRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, series_index, author, point_index, period_label, ema_score, risk_band, line_band, workload_strain_score
		FROM %s ORDER BY run_id, series_index, point_index`, quoteTableName(trendPointsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrendPointRecord
	for rows.Next() {
		var r schema.TrendPointRecord
		if err := rows.Scan(&r.RunID, &r.SeriesIndex, &r.Author, &r.PointIndex, &r.PeriodLabel, &r.EMAScore, &r.RiskBand, &r.LineBand, &r.WorkloadStrainScore); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
