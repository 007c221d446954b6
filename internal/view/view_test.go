package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		perPage   int
		wantPage  int
		wantPages int
		wantStart int
		wantEnd   int
		wantInfo  string
	}{
		{"empty", 0, 1, 10, 1, 0, 0, 0, "Showing 0–0 of 0 entries"},
		{"first page", 25, 1, 10, 1, 3, 0, 10, "Showing 1–10 of 25 entries"},
		{"last partial page", 25, 3, 10, 3, 3, 20, 25, "Showing 21–25 of 25 entries"},
		{"page past the end is clamped", 25, 9, 10, 3, 3, 20, 25, "Showing 21–25 of 25 entries"},
		{"page below one is clamped", 5, 0, 10, 1, 1, 0, 5, "Showing 1–5 of 5 entries"},
		{"default page size", 12, 2, 0, 2, 2, 10, 12, "Showing 11–12 of 12 entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
			assert.Equal(t, tt.wantInfo, p.Info)
		})
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, Paginate(len(items), 2, 2)))
	assert.Equal(t, []int{5}, Slice(items, Paginate(len(items), 3, 2)))
	assert.Empty(t, Slice([]int{}, Paginate(0, 1, 2)))
}

func TestFormatDateRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01/03/2024 To 15/03/2024", FormatDateRange(start, end))
	assert.Equal(t, "From 01/03/2024", FormatDateRange(start, time.Time{}))
	assert.Equal(t, "Up to 15/03/2024", FormatDateRange(time.Time{}, end))
	assert.Equal(t, "No date range selected", FormatDateRange(time.Time{}, time.Time{}))
}

func TestPageBreaks(t *testing.T) {
	breaks := func(capacity, overtime string) map[string]bool {
		out := make(map[string]bool)
		for _, s := range PageBreaks(capacity, overtime).Sections {
			out[s.ID] = s.PageBreakBefore
		}
		return out
	}

	tests := []struct {
		capacity, overtime string
		results, ot, sum   bool
	}{
		{"true", "true", true, false, false},
		{"true", "false", true, true, false},
		{"true", "", true, true, false},
		{"false", "true", false, true, false},
		{"false", "false", false, false, true},
		{"", "false", false, false, true},
		{"", "", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.capacity+"/"+tt.overtime, func(t *testing.T) {
			got := breaks(tt.capacity, tt.overtime)
			assert.Equal(t, tt.results, got[ResultsSectionID])
			assert.Equal(t, tt.ot, got[OvertimeSectionID])
			assert.Equal(t, tt.sum, got[SummarySectionID])
			assert.False(t, got[CapacitySectionID])
		})
	}
}

func TestPageBreaksVisibility(t *testing.T) {
	layout := PageBreaks("true", "false")
	require.Len(t, layout.Sections, 4)
	assert.True(t, layout.Sections[0].Visible)
	assert.True(t, layout.Sections[1].Visible)
	assert.False(t, layout.Sections[2].Visible)
	assert.True(t, layout.Sections[3].Visible)
}

func TestCalendar(t *testing.T) {
	// March 2024 starts on a Friday and has 31 days
	weeks := Calendar(2024, time.March, []string{"2024-03-29"})
	require.Len(t, weeks, 6)

	assert.Zero(t, weeks[0][4].Day)
	assert.Equal(t, Day{Date: "2024-03-01", Day: 1}, weeks[0][5])
	assert.Equal(t, Day{Date: "2024-03-03", Day: 3, Sunday: true}, weeks[1][0])
	assert.Equal(t, Day{Date: "2024-03-29", Day: 29, Holiday: true}, weeks[4][5])
	assert.Equal(t, Day{Date: "2024-03-31", Day: 31, Sunday: true}, weeks[5][0])
	assert.Zero(t, weeks[5][1].Day)

	// February 2026 starts on a Sunday and fits in four rows
	assert.Len(t, Calendar(2026, time.February, nil), 4)
}

func TestToggleHoliday(t *testing.T) {
	list, added, err := ToggleHoliday([]string{"2024-12-25"}, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"2024-01-01", "2024-12-25"}, list)

	list, added, err = ToggleHoliday(list, "2024-12-25")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{"2024-01-01"}, list)

	_, _, err = ToggleHoliday(list, "25/12/2024")
	assert.Error(t, err)
}
