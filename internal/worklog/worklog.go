// Package worklog reads Jira-style worklog exports from CSV and Excel files.
package worklog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
	"github.com/xuri/excelize/v2"
)

// Column headers of a worklog export.
const (
	colStartDate         = "Start Date"
	colProjectName       = "Project Name"
	colComment           = "Comment"
	colLabels            = "Labels"
	colIssueKey          = "Issue Key"
	colTimeSpent         = "Time Spent (seconds)"
	colIssueStatus       = "Issue Status"
	colIssueSummary      = "Issue Summary"
	colAuthor            = "Author"
	colOriginalEstimate  = "Original Estimate (seconds)"
	colRemainingEstimate = "Remaining Estimate (seconds)"
)

var requiredColumns = []string{
	colStartDate, colProjectName, colComment, colLabels, colIssueKey,
	colTimeSpent, colIssueStatus, colIssueSummary, colAuthor,
}

// ErrUnsupportedFormat is returned for files that are neither CSV nor Excel.
var ErrUnsupportedFormat = errors.New("unsupported worklog format")

// Loader is the file-backed implementation of contract.WorklogLoader.
type Loader struct{}

var _ contract.WorklogLoader = Loader{}

// NewLoader returns a worklog loader.
func NewLoader() Loader {
	return Loader{}
}

// Load implements contract.WorklogLoader.
func (Loader) Load(path string) ([]schema.WorklogEntry, error) {
	return Load(path)
}

// LoadReader implements contract.WorklogLoader.
func (Loader) LoadReader(r io.Reader, name string) ([]schema.WorklogEntry, error) {
	return LoadReader(r, name)
}

// Load reads a worklog file, choosing the parser by its extension.
func Load(path string) ([]schema.WorklogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open worklog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadReader(f, filepath.Base(path))
}

// LoadReader parses worklog content whose format is given by the extension of name.
func LoadReader(r io.Reader, name string) ([]schema.WorklogEntry, error) {
	rows, err := readRows(r, name)
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

// readRows returns the header and data rows of a CSV or Excel worklog.
func readRows(r io.Reader, name string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		return readFirstSheet(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// readFirstSheet returns the raw cell values of the first worksheet.
func readFirstSheet(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}
	return rows, nil
}

// parseRows maps a header row plus data rows into worklog entries.
func parseRows(rows [][]string) ([]schema.WorklogEntry, error) {
	if len(rows) == 0 {
		return nil, errors.New("worklog is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]schema.WorklogEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		line := n + 2 // 1-based, after the header

		start, err := ParseDateCell(cell(row, colStartDate))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", line, colStartDate, err)
		}
		spent, err := parseSeconds(cell(row, colTimeSpent))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", line, colTimeSpent, err)
		}
		original, err := parseSeconds(cell(row, colOriginalEstimate))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", line, colOriginalEstimate, err)
		}
		remaining, err := parseSeconds(cell(row, colRemainingEstimate))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", line, colRemainingEstimate, err)
		}

		labels := cell(row, colLabels)
		if labels == "" {
			labels = schema.UnlabeledCategory
		}

		entries = append(entries, schema.WorklogEntry{
			StartDate:         start,
			ProjectName:       cell(row, colProjectName),
			Comment:           cell(row, colComment),
			Labels:            labels,
			IssueKey:          cell(row, colIssueKey),
			TimeSpentSeconds:  spent,
			IssueStatus:       cell(row, colIssueStatus),
			IssueSummary:      cell(row, colIssueSummary),
			Author:            cell(row, colAuthor),
			OriginalEstimate:  original,
			RemainingEstimate: remaining,
		})
	}
	return entries, nil
}

// ParseDateCell parses a text date or an Excel serial date.
func ParseDateCell(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			return t.UTC().Round(time.Second), nil
		}
	}
	return contract.ParseDate(s)
}

// parseSeconds reads a duration column; blanks count as zero.
func parseSeconds(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
