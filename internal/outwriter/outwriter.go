// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStrain prints the strain chart using the configured output format.
func (ow *OutWriter) WriteStrain(chart schema.StrainChart, cfg *contract.Config) error {
	return WriteStrainChart(chart, cfg)
}

// WriteReport prints one report kind, or every report for "all".
func (ow *OutWriter) WriteReport(kind schema.ReportKind, bundle schema.ReportBundle, cfg *contract.Config) error {
	return WriteReport(kind, bundle, cfg)
}

// WriteHolidays prints the holiday list using the configured output format.
func (ow *OutWriter) WriteHolidays(holidays []string, cfg *contract.Config) error {
	return WriteHolidays(holidays, cfg)
}

// WriteCalendar prints the holiday calendar of one month.
func (ow *OutWriter) WriteCalendar(month time.Time, weeks [][]view.Day, cfg *contract.Config) error {
	return WriteCalendar(month, weeks, cfg)
}

// GetMaxTableTextWidth calculates the width available to the free-text column
// of a table, given the width taken by the other columns.
func GetMaxTableTextWidth(cfg *contract.Config, reserved int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - reserved - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
