// Package agg has aggregation logic for worklog activity data.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/timesheet/core/strain"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/schema"
)

// WeekStart returns midnight of the ISO week's Monday that contains t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// WeekKey labels the week containing t by its Monday.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(contract.ISODateLayout)
}

// WeekDateRange describes the Monday to Sunday span of a week.
func WeekDateRange(monday time.Time) string {
	return monday.Format(contract.DisplayDateLayout) + " - " + monday.AddDate(0, 0, 6).Format(contract.DisplayDateLayout)
}

// HolidaySet converts a list of YYYY-MM-DD dates to a lookup set.
func HolidaySet(holidays []string) map[string]struct{} {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return set
}

// WeeklyCapacity returns the bookable hours of the week beginning at monday.
// Weekends and holidays are excluded.
func WeeklyCapacity(monday time.Time, holidays map[string]struct{}, dailyHours float64) float64 {
	workdays := 0
	for i := range 5 {
		day := monday.AddDate(0, 0, i)
		if _, ok := holidays[day.Format(contract.ISODateLayout)]; ok {
			continue
		}
		workdays++
	}
	return float64(workdays) * dailyHours
}

// weeklyHours holds hours per author per week plus the set of weeks seen.
type weeklyHours struct {
	byAuthor map[string]map[string]float64
	weeks    map[string]time.Time
}

// collectWeeklyHours buckets every entry into its author and week.
func collectWeeklyHours(entries []schema.WorklogEntry) weeklyHours {
	wh := weeklyHours{
		byAuthor: make(map[string]map[string]float64),
		weeks:    make(map[string]time.Time),
	}
	for _, e := range entries {
		if e.StartDate.IsZero() || e.Author == "" {
			continue
		}
		monday := WeekStart(e.StartDate)
		key := monday.Format(contract.ISODateLayout)
		wh.weeks[key] = monday
		if wh.byAuthor[e.Author] == nil {
			wh.byAuthor[e.Author] = make(map[string]float64)
		}
		wh.byAuthor[e.Author][key] += e.Hours()
	}
	return wh
}

// sortedWeeks returns the week keys oldest first.
func (wh weeklyHours) sortedWeeks() []string {
	keys := make([]string, 0, len(wh.weeks))
	for k := range wh.weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys) // ISO dates sort chronologically
	return keys
}

// BuildStrainPayload aggregates worklog entries into the strain chart input.
// Every employee gets a value for every week in the data; a week without
// bookings counts as zero overtime. Records are ordered by strain score,
// highest first, then by author.
func BuildStrainPayload(entries []schema.WorklogEntry, holidays []string, dailyHours float64) schema.StrainPayload {
	if dailyHours <= 0 {
		dailyHours = contract.DefaultDailyHours
	}

	wh := collectWeeklyHours(entries)
	if len(wh.byAuthor) == 0 {
		return schema.StrainPayload{BurnoutData: []schema.EmployeeStrainRecord{}}
	}

	holidaySet := HolidaySet(holidays)
	weeks := wh.sortedWeeks()
	capacity := make([]float64, len(weeks))
	for i, w := range weeks {
		capacity[i] = WeeklyCapacity(wh.weeks[w], holidaySet, dailyHours)
	}

	total := make([]float64, len(weeks))
	overtime := make([]float64, len(weeks))
	records := make([]schema.EmployeeStrainRecord, 0, len(wh.byAuthor))

	for author, hoursByWeek := range wh.byAuthor {
		series := make([]float64, len(weeks))
		for i, w := range weeks {
			hours := hoursByWeek[w]
			ot := max(0, hours-capacity[i])
			series[i] = ot
			total[i] += hours
			overtime[i] += ot
		}
		smoothed := strain.EMA(series)
		records = append(records, schema.EmployeeStrainRecord{
			Author:              author,
			CurrentOvertime:     contract.RoundHours(series[len(series)-1]),
			WorkloadStrainScore: contract.RoundHours(smoothed[len(smoothed)-1]),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].WorkloadStrainScore != records[j].WorkloadStrainScore {
			return records[i].WorkloadStrainScore > records[j].WorkloadStrainScore
		}
		return records[i].Author < records[j].Author
	})

	regular := make([]float64, len(weeks))
	ranges := make([]string, len(weeks))
	for i, w := range weeks {
		regular[i] = contract.RoundHours(total[i] - overtime[i])
		overtime[i] = contract.RoundHours(overtime[i])
		total[i] = contract.RoundHours(total[i])
		ranges[i] = WeekDateRange(wh.weeks[w])
	}

	return schema.StrainPayload{
		BurnoutData: records,
		WeeklyOvertimeData: &schema.WeeklyOvertimeData{
			Weeks:         weeks,
			DateRanges:    ranges,
			ActualHours:   regular,
			OvertimeHours: overtime,
			TotalHours:    total,
		},
	}
}
