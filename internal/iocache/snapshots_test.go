package iocache

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorklogSnapshots(t *testing.T) {
	store := newTestSnapshotStore(t)
	entries := []schema.WorklogEntry{
		{Author: "Alice", Labels: "Feature", TimeSpentSeconds: 3600, StartDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
	}

	snap, err := SaveWorklog(store, "sprint.csv", "https://jira.example.com/browse/", entries)
	require.NoError(t, err)
	assert.Len(t, snap.ID, 36)

	loaded, err := LoadWorklog(store, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "sprint.csv", loaded.SourceName)
	assert.Equal(t, "https://jira.example.com/browse/", loaded.BaseURL)
	assert.Equal(t, entries, loaded.Entries)

	ids, err := ListWorklogs(store)
	require.NoError(t, err)
	assert.Equal(t, []string{snap.ID}, ids)

	require.NoError(t, RemoveWorklog(store, snap.ID))
	_, err = LoadWorklog(store, snap.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, RemoveWorklog(store, snap.ID), ErrNotFound)
}

func TestLoadWorklog_NilStore(t *testing.T) {
	_, err := LoadWorklog(nil, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = SaveWorklog(nil, "a.csv", "", nil)
	assert.Error(t, err)
}

func TestHolidays(t *testing.T) {
	store := newTestSnapshotStore(t)

	holidays, err := LoadHolidays(store)
	require.NoError(t, err)
	assert.Equal(t, []string{}, holidays)

	saved, err := SaveHolidays(store, []string{"2024-12-25", " 2024-01-01", "2024-12-25"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-12-25"}, saved)

	holidays, err = LoadHolidays(store)
	require.NoError(t, err)
	assert.Equal(t, saved, holidays)

	_, err = SaveHolidays(store, []string{"25/12/2024"})
	assert.ErrorContains(t, err, "expected YYYY-MM-DD")

	saved, err = SaveHolidays(store, nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestPreferences(t *testing.T) {
	store := newTestSnapshotStore(t)

	value, err := LoadPreference(store, schema.OvertimeUIPref)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, SavePreference(store, schema.OvertimeUIPref, true))
	require.NoError(t, SavePreference(store, schema.CapacityUIPref, false))

	value, err = LoadPreference(store, schema.OvertimeUIPref)
	require.NoError(t, err)
	assert.Equal(t, "true", value)
	value, err = LoadPreference(store, schema.CapacityUIPref)
	require.NoError(t, err)
	assert.Equal(t, "false", value)

	assert.ErrorContains(t, SavePreference(store, "darkMode", true), "unknown preference")
	_, err = LoadPreference(store, "darkMode")
	assert.Error(t, err)
}

func TestPruneSnapshots(t *testing.T) {
	store := newTestSnapshotStore(t)
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, store.Set(WorklogKeyPrefix+"old", []byte("{}"), 1, now.Add(-2*time.Hour).Unix()))
	require.NoError(t, store.Set(WorklogKeyPrefix+"new", []byte("{}"), 1, now.Add(-10*time.Minute).Unix()))
	require.NoError(t, store.Set(HolidaysKey, []byte("[]"), 1, now.Add(-48*time.Hour).Unix()))

	assert.True(t, ShouldRunCleanup(store, time.Hour, now))
	removed, err := MaybePruneSnapshots(store, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	ids, err := ListWorklogs(store)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids)

	// Holidays are never pruned
	_, _, _, err = store.Get(HolidaysKey)
	assert.NoError(t, err)

	// Second run within the hour is skipped
	assert.False(t, ShouldRunCleanup(store, time.Hour, now.Add(30*time.Minute)))
	removed, err = MaybePruneSnapshots(store, time.Hour, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, removed)

	assert.True(t, ShouldRunCleanup(store, time.Hour, now.Add(time.Hour)))
}

func TestShouldRunCleanup_NilStore(t *testing.T) {
	assert.False(t, ShouldRunCleanup(nil, time.Hour, time.Now()))
}

func TestGetValue_StoreError(t *testing.T) {
	store := &failingSnapshotStore{}
	_, err := LoadHolidays(store)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

// failingSnapshotStore fails every read with a non-ErrNoRows error.
type failingSnapshotStore struct {
	SnapshotStoreImpl
}

func (f *failingSnapshotStore) Get(string) ([]byte, int, int64, error) {
	return nil, 0, 0, sql.ErrConnDone
}
