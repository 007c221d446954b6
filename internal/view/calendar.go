package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
)

// Day is one cell of the holiday calendar. Padding cells have a zero Day.
type Day struct {
	Date    string `json:"date,omitempty"`
	Day     int    `json:"day"`
	Holiday bool   `json:"holiday"`
	Sunday  bool   `json:"sunday"`
}

// Calendar builds the Sunday-first weeks of a month.
// Rows stop after the week holding the last day of the month.
func Calendar(year int, month time.Month, holidays []string) [][]Day {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())

	var weeks [][]Day
	day := 1
	for row := 0; row < 6 && day <= daysInMonth; row++ {
		week := make([]Day, 7)
		for col := range 7 {
			if (row == 0 && col < lead) || day > daysInMonth {
				continue
			}
			date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(contract.ISODateLayout)
			_, holiday := set[date]
			week[col] = Day{Date: date, Day: day, Holiday: holiday, Sunday: col == 0}
			day++
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// ToggleHoliday adds date to the list or removes it when already present.
// It returns the sorted list and whether the date was added.
func ToggleHoliday(holidays []string, date string) ([]string, bool, error) {
	if _, err := time.Parse(contract.ISODateLayout, date); err != nil {
		return holidays, false, fmt.Errorf("invalid holiday date %q: expected YYYY-MM-DD", date)
	}

	result := make([]string, 0, len(holidays)+1)
	added := true
	for _, h := range holidays {
		if h == date {
			added = false
			continue
		}
		result = append(result, h)
	}
	if added {
		result = append(result, date)
	}
	slices.Sort(result)
	return slices.Compact(result), added, nil
}
