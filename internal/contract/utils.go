package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/timesheet/schema"
	"github.com/shopspring/decimal"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighRiskColor = color.New(color.FgMagenta, color.Bold) // HighRiskColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor represents standard caution, not bold.
	SafeColor     = color.New(color.FgGreen)               // SafeColor represents a healthy workload.
	HolidayColor  = color.New(color.FgCyan, color.Bold)    // HolidayColor marks holidays in the calendar.
)

// GetColorLabel returns a colored band label for console output (table).
func GetColorLabel(band schema.RiskBand) string {
	text := string(band)

	switch band {
	case schema.CriticalBand:
		return CriticalColor.Sprint(text)
	case schema.HighRiskBand:
		return HighRiskColor.Sprint(text)
	case schema.ModerateBand:
		return ModerateColor.Sprint(text)
	default: // "Safe"
		return SafeColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timesheet_snapshots.db"
	}
	return filepath.Join(homeDir, ".timesheet_snapshots.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for strain history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timesheet_history.db"
	}
	return filepath.Join(homeDir, ".timesheet_history.db")
}

// TruncateText shortens s to maxWidth runes, marking the cut with "...".
func TruncateText(s string, maxWidth int) string {
	r := []rune(s)
	if maxWidth <= 3 || len(r) <= maxWidth {
		return s
	}
	return string(r[:maxWidth-3]) + "..."
}

// ParseBoolString parses common boolean string representations.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// RoundHours rounds to two decimal places with half-to-even ties.
func RoundHours(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}
