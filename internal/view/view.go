// Package view has presentation helpers shared by the CLI, HTTP and MCP front-ends.
package view

import (
	"fmt"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
)

// DefaultPerPage is the page size of the summary table.
const DefaultPerPage = 10

// Page describes one page of a paginated table.
// Start and End are slice bounds into the full row list.
type Page struct {
	Number     int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
	Start      int    `json:"-"`
	End        int    `json:"-"`
	Info       string `json:"info"`
}

// Paginate computes the bounds of the requested page, clamped to the valid range.
func Paginate(total, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total = max(total, 0)
	totalPages := (total + perPage - 1) / perPage
	page = max(page, 1)
	if totalPages > 0 {
		page = min(page, totalPages)
	}

	start := (page - 1) * perPage
	end := start + perPage
	return Page{
		Number:     page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      total,
		Start:      min(start, total),
		End:        min(end, total),
		Info:       fmt.Sprintf("Showing %d–%d of %d entries", min(start+1, total), min(end, total), total),
	}
}

// Slice returns the rows of items that fall on page p.
func Slice[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return items[:0]
	}
	return items[p.Start:min(p.End, len(items))]
}

// FormatDateRange describes an optional date range for report headers.
func FormatDateRange(start, end time.Time) string {
	switch {
	case !start.IsZero() && !end.IsZero():
		return start.Format(contract.DisplayDateLayout) + " To " + end.Format(contract.DisplayDateLayout)
	case !start.IsZero():
		return "From " + start.Format(contract.DisplayDateLayout)
	case !end.IsZero():
		return "Up to " + end.Format(contract.DisplayDateLayout)
	default:
		return "No date range selected"
	}
}
