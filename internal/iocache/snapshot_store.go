package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// SnapshotTableName is the table holding uploaded worklogs, holidays and preferences.
const SnapshotTableName = "timesheet_snapshots"

// SnapshotStoreImpl is a key/value store backed by one SQL table.
type SnapshotStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore opens the snapshot table for the backend, creating it if needed.
// The none backend yields a store that keeps nothing.
func NewSnapshotStore(tableName string, backend schema.DatabaseBackend, connStr string) (*SnapshotStoreImpl, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		return &SnapshotStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, contract.GetSnapshotDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(snapshotTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SnapshotStoreImpl{db: db, tableName: tableName, backend: backend, connStr: connStr}, nil
}

// snapshotTableQuery returns the CREATE TABLE query for the given backend.
func snapshotTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_key VARCHAR(255) PRIMARY KEY,
				snapshot_value LONGBLOB NOT NULL,
				snapshot_version INT NOT NULL,
				snapshot_timestamp BIGINT NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_key TEXT PRIMARY KEY,
				snapshot_value BYTEA NOT NULL,
				snapshot_version INTEGER NOT NULL,
				snapshot_timestamp BIGINT NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_key TEXT PRIMARY KEY,
				snapshot_value BLOB NOT NULL,
				snapshot_version INTEGER NOT NULL,
				snapshot_timestamp INTEGER NOT NULL
			);
		`, quoted)
	}
}

// disabled reports whether the store keeps nothing.
func (ss *SnapshotStoreImpl) disabled() bool {
	return ss.backend == schema.NoneBackend || ss.db == nil
}

// Get retrieves a value by key. A missing key yields sql.ErrNoRows.
func (ss *SnapshotStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ss.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64

	ph := placeholders(ss.backend, 1)
	query := fmt.Sprintf(`SELECT snapshot_value, snapshot_version, snapshot_timestamp FROM %s WHERE snapshot_key = %s`,
		quoteTableName(ss.tableName, ss.backend), ph[0])
	if err := ss.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair.
func (ss *SnapshotStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ss.disabled() {
		return nil
	}
	_, err := ss.db.Exec(ss.upsertQuery(), key, value, version, timestamp)
	return err
}

// upsertQuery returns the UPSERT query for the backend.
func (ss *SnapshotStoreImpl) upsertQuery() string {
	quoted := quoteTableName(ss.tableName, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (snapshot_key, snapshot_value, snapshot_version, snapshot_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE snapshot_value = new.snapshot_value, snapshot_version = new.snapshot_version, snapshot_timestamp = new.snapshot_timestamp`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (snapshot_key, snapshot_value, snapshot_version, snapshot_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (snapshot_key) DO UPDATE SET snapshot_value = EXCLUDED.snapshot_value, snapshot_version = EXCLUDED.snapshot_version, snapshot_timestamp = EXCLUDED.snapshot_timestamp`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (snapshot_key, snapshot_value, snapshot_version, snapshot_timestamp) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Delete removes a key. Deleting a missing key is not an error.
func (ss *SnapshotStoreImpl) Delete(key string) error {
	if ss.disabled() {
		return nil
	}
	ph := placeholders(ss.backend, 1)
	query := fmt.Sprintf(`DELETE FROM %s WHERE snapshot_key = %s`, quoteTableName(ss.tableName, ss.backend), ph[0])
	_, err := ss.db.Exec(query, key)
	return err
}

// Keys lists keys starting with prefix, newest first.
func (ss *SnapshotStoreImpl) Keys(prefix string) ([]string, error) {
	if ss.disabled() {
		return nil, nil
	}
	ph := placeholders(ss.backend, 1)
	query := fmt.Sprintf(`SELECT snapshot_key FROM %s WHERE snapshot_key LIKE %s ORDER BY snapshot_timestamp DESC, snapshot_key`,
		quoteTableName(ss.tableName, ss.backend), ph[0])
	rows, err := ss.db.Query(query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// PruneBefore deletes keys starting with prefix whose timestamp is older than cutoff.
func (ss *SnapshotStoreImpl) PruneBefore(prefix string, cutoff int64) (int64, error) {
	if ss.disabled() {
		return 0, nil
	}
	ph := placeholders(ss.backend, 2)
	query := fmt.Sprintf(`DELETE FROM %s WHERE snapshot_key LIKE %s AND snapshot_timestamp < %s`,
		quoteTableName(ss.tableName, ss.backend), ph[0], ph[1])
	res, err := ss.db.Exec(query, prefix+"%", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}
	if ss.disabled() {
		return status, nil
	}

	quoted := quoteTableName(ss.tableName, ss.backend)
	if err := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	ph := placeholders(ss.backend, 1)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE snapshot_key LIKE %s", quoted, ph[0])
	if err := ss.db.QueryRow(countQuery, WorklogKeyPrefix+"%").Scan(&status.WorklogEntries); err != nil {
		return status, fmt.Errorf("failed to count worklogs: %w", err)
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(snapshot_timestamp), MIN(snapshot_timestamp) FROM %s", quoted)
	if err := ss.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)
	status.TableSizeBytes = tableSize(ss.db, ss.backend, ss.connStr, ss.tableName, int64(status.TotalEntries))

	return status, nil
}

// tableSize estimates the on-disk size of a table, falling back to a rough
// per-row estimate when the backend cannot tell.
func tableSize(db *sql.DB, backend schema.DatabaseBackend, connStr, tableName string, rows int64) int64 {
	fallback := rows * 1000
	var size int64
	switch backend {
	case schema.SQLiteBackend:
		query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := db.QueryRow(query).Scan(&size); err != nil {
			return 0
		}
		return size
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := db.QueryRow(query, cfg.DBName, tableName).Scan(&size); err != nil {
			return fallback
		}
		return size
	case schema.PostgreSQLBackend:
		if err := db.QueryRow("SELECT pg_total_relation_size($1)", tableName).Scan(&size); err != nil {
			return fallback
		}
		return size
	default:
		return fallback
	}
}
