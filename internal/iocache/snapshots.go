package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// Key layout of the snapshot table.
const (
	WorklogKeyPrefix    = "worklog:"
	PreferenceKeyPrefix = "pref:"
	HolidaysKey         = "holidays"
	LastCleanupKey      = "meta:last_cleanup"
)

// snapshotVersion is bumped whenever the stored JSON shape changes.
const snapshotVersion = 1

// ErrNotFound is returned when a snapshot key does not exist.
var ErrNotFound = errors.New("snapshot not found")

// getValue wraps Get and maps missing keys to ErrNotFound.
func getValue(store contract.SnapshotStore, key string) ([]byte, int64, error) {
	if store == nil {
		return nil, 0, ErrNotFound
	}
	value, _, ts, err := store.Get(key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, ts, nil
}

// setJSON marshals v and stores it under key, stamped with now.
func setJSON(store contract.SnapshotStore, key string, v any, now time.Time) error {
	if store == nil {
		return errors.New("snapshot store is not initialized")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := store.Set(key, data, snapshotVersion, now.Unix()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SaveWorklog stores parsed entries under a fresh id and returns the snapshot.
func SaveWorklog(store contract.SnapshotStore, sourceName, baseURL string, entries []schema.WorklogEntry) (schema.WorklogSnapshot, error) {
	snap := schema.WorklogSnapshot{
		ID:         uuid.NewString(),
		SourceName: sourceName,
		BaseURL:    baseURL,
		CreatedAt:  time.Now(),
		Entries:    entries,
	}
	if err := setJSON(store, WorklogKeyPrefix+snap.ID, snap, snap.CreatedAt); err != nil {
		return schema.WorklogSnapshot{}, err
	}
	return snap, nil
}

// LoadWorklog returns the snapshot with the given id.
func LoadWorklog(store contract.SnapshotStore, id string) (schema.WorklogSnapshot, error) {
	var snap schema.WorklogSnapshot
	value, _, err := getValue(store, WorklogKeyPrefix+id)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(value, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode worklog %s: %w", id, err)
	}
	return snap, nil
}

// RemoveWorklog deletes the snapshot with the given id.
func RemoveWorklog(store contract.SnapshotStore, id string) error {
	if _, _, err := getValue(store, WorklogKeyPrefix+id); err != nil {
		return err
	}
	return store.Delete(WorklogKeyPrefix + id)
}

// ListWorklogs returns the ids of stored worklogs, newest first.
func ListWorklogs(store contract.SnapshotStore) ([]string, error) {
	if store == nil {
		return nil, nil
	}
	keys, err := store.Keys(WorklogKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, WorklogKeyPrefix))
	}
	return ids, nil
}

// LoadHolidays returns the stored holiday list, or an empty list when none was saved.
func LoadHolidays(store contract.SnapshotStore) ([]string, error) {
	value, _, err := getValue(store, HolidaysKey)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var holidays []string
	if err := json.Unmarshal(value, &holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}
	if holidays == nil {
		holidays = []string{}
	}
	return holidays, nil
}

// SaveHolidays replaces the stored holiday list. Dates are validated and sorted.
func SaveHolidays(store contract.SnapshotStore, holidays []string) ([]string, error) {
	cleaned := make([]string, 0, len(holidays))
	for _, h := range holidays {
		h = strings.TrimSpace(h)
		if _, err := time.Parse(time.DateOnly, h); err != nil {
			return nil, fmt.Errorf("invalid holiday %q: expected YYYY-MM-DD", h)
		}
		cleaned = append(cleaned, h)
	}
	slices.Sort(cleaned)
	cleaned = slices.Compact(cleaned)
	if err := setJSON(store, HolidaysKey, cleaned, time.Now()); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// LoadPreference returns "true", "false", or "" when the preference was never set.
func LoadPreference(store contract.SnapshotStore, name string) (string, error) {
	if _, ok := schema.ValidPreferences[name]; !ok {
		return "", fmt.Errorf("unknown preference: %s", name)
	}
	value, _, err := getValue(store, PreferenceKeyPrefix+name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var enabled bool
	if err := json.Unmarshal(value, &enabled); err != nil {
		return "", fmt.Errorf("failed to decode preference %s: %w", name, err)
	}
	return strconv.FormatBool(enabled), nil
}

// SavePreference stores a boolean preference, stamped with the current time.
func SavePreference(store contract.SnapshotStore, name string, enabled bool) error {
	if _, ok := schema.ValidPreferences[name]; !ok {
		return fmt.Errorf("unknown preference: %s", name)
	}
	return setJSON(store, PreferenceKeyPrefix+name, enabled, time.Now())
}

// PruneSnapshots deletes worklogs older than maxAge and records the cleanup time.
func PruneSnapshots(store contract.SnapshotStore, maxAge time.Duration, now time.Time) (int64, error) {
	if store == nil {
		return 0, nil
	}
	removed, err := store.PruneBefore(WorklogKeyPrefix, now.Add(-maxAge).Unix())
	if err != nil {
		return 0, err
	}
	marker := []byte(strconv.FormatInt(now.Unix(), 10))
	if err := store.Set(LastCleanupKey, marker, snapshotVersion, now.Unix()); err != nil {
		return removed, fmt.Errorf("failed to record cleanup: %w", err)
	}
	return removed, nil
}

// ShouldRunCleanup reports whether the last cleanup happened more than interval ago.
func ShouldRunCleanup(store contract.SnapshotStore, interval time.Duration, now time.Time) bool {
	_, ts, err := getValue(store, LastCleanupKey)
	if err != nil {
		return store != nil
	}
	return now.Sub(time.Unix(ts, 0)) >= interval
}

// MaybePruneSnapshots prunes at most once per maxAge.
func MaybePruneSnapshots(store contract.SnapshotStore, maxAge time.Duration, now time.Time) (int64, error) {
	if !ShouldRunCleanup(store, maxAge, now) {
		return 0, nil
	}
	return PruneSnapshots(store, maxAge, now)
}
