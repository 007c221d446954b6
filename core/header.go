package core

import (
	"fmt"
	"path/filepath"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/huangsam/timesheet/schema"
)

// logRunHeader prints the source and date range of a run.
// Only text output gets a header so that csv and json stay machine readable.
func logRunHeader(cfg *contract.Config, source string) {
	if cfg.Output != schema.TextOut && cfg.Output != "" {
		return
	}
	name := filepath.Base(source)
	if name == "" || name == "." {
		name = "payload"
	}
	author := cfg.Author
	if author == "" {
		author = schema.AllAuthors
	}
	fmt.Printf("🔎 Source: %s (Author: %s)\n", name, author)
	fmt.Printf("📅 Range: %s\n", view.FormatDateRange(cfg.StartDate, cfg.EndDate))
}
