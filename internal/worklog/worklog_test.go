package worklog

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

//go:embed testdata/worklog.csv
var worklogFixture []byte

var fixtureHeader = []string{
	"Start Date", "Project Name", "Comment", "Labels", "Issue Key", "Time Spent (seconds)",
	"Issue Status", "Issue Summary", "Author",
}

func TestLoadReaderCSV(t *testing.T) {
	entries, err := LoadReader(bytes.NewReader(worklogFixture), "export.csv")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, "Alice", first.Author, "author should be trimmed")
	assert.Equal(t, "Feature", first.Labels)
	assert.Equal(t, "PAY-101", first.IssueKey)
	assert.Equal(t, 7200.0, first.TimeSpentSeconds)
	assert.Equal(t, 14400.0, first.OriginalEstimate)
	assert.Equal(t, 2.0, first.Hours())

	second := entries[1]
	assert.Equal(t, schema.UnlabeledCategory, second.Labels)
	assert.Zero(t, second.OriginalEstimate)
	assert.Zero(t, second.RemainingEstimate)

	third := entries[2]
	assert.Equal(t, time.Date(2024, 3, 4, 15, 15, 0, 0, time.UTC), third.StartDate)
	assert.Equal(t, "Fixed flaky test, again", third.Comment)
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		file    string
		wantErr string
	}{
		{"unsupported extension", "a,b", "export.txt", "unsupported worklog format"},
		{"legacy excel", "", "export.xls", "unsupported worklog format"},
		{"empty file", "", "export.csv", "worklog is empty"},
		{"missing columns", "Start Date,Author\n2024-01-01,Alice\n", "export.csv", "missing required columns: Project Name, Comment"},
		{
			"bad date",
			strings.Join(fixtureHeader, ",") + "\nyesterday,P,C,L,K,60,Done,S,Alice\n",
			"export.csv",
			"row 2: invalid Start Date",
		},
		{
			"bad seconds",
			strings.Join(fixtureHeader, ",") + "\n2024-01-01,P,C,L,K,lots,Done,S,Alice\n",
			"export.csv",
			"row 2: invalid Time Spent (seconds)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.content), tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worklog.csv")
	require.NoError(t, os.WriteFile(path, worklogFixture, 0o644))

	entries, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLoadReaderXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &fixtureHeader))
	row := []any{"2024-03-05 10:00:00", "Portal", "Standup", "Meeting", "POR-1", 900, "Done", "Daily sync", "Carol"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	// Serial date 45357 is 2024-03-06
	serialRow := []any{45357.5, "Portal", "Pairing", "Feature", "POR-2", 3600, "Done", "Pairing", "Carol"}
	require.NoError(t, f.SetSheetRow(sheet, "A3", &serialRow))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	entries, err := LoadReader(buf, "export.xlsx")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), entries[0].StartDate)
	assert.Equal(t, 900.0, entries[0].TimeSpentSeconds)
	assert.Equal(t, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), entries[1].StartDate)
	assert.Zero(t, entries[1].OriginalEstimate)
}

func TestParseHolidayWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "Holiday"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "2024-12-25"))
	require.NoError(t, f.SetCellValue(sheet, "A3", 45292)) // 2024-01-01
	require.NoError(t, f.SetCellValue(sheet, "B2", "Christmas"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "2024-12-25"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	holidays, err := ParseHolidayWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-12-25"}, holidays)
}

func TestParseHolidayWorkbookInvalid(t *testing.T) {
	_, err := ParseHolidayWorkbook(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func TestParseDateCell(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T08:30:00+05:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"45306", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateCell(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDateCell("12")
	assert.Error(t, err)
}
