package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/view"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// holidaysSheet is the sheet name of the holiday workbook.
const holidaysSheet = "Holidays"

var weekdayHeader = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WriteHolidays outputs the holiday list.
func WriteHolidays(holidays []string, cfg *contract.Config) error {
	return writeOutput(cfg, renderer{
		data: holidays,
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "weekday"}, func(cw *csv.Writer) error {
				for _, h := range holidays {
					if err := cw.Write([]string{h, weekdayOf(h)}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		xlsx: func(f *excelize.File) error {
			if err := addSheet(f, holidaysSheet); err != nil {
				return err
			}
			rows := make([][]any, 0, len(holidays))
			for _, h := range holidays {
				rows = append(rows, []any{h, weekdayOf(h)})
			}
			_, err := writeSheetTable(f, holidaysSheet, "A1", []string{"Date", "Weekday"}, rows)
			return err
		},
		table: func(w io.Writer) error {
			if len(holidays) == 0 {
				_, err := fmt.Fprintln(w, "No holidays configured.")
				return err
			}
			data := make([][]string, 0, len(holidays))
			for _, h := range holidays {
				data = append(data, []string{h, weekdayOf(h)})
			}
			if err := renderTable(w, []string{"Date", "Weekday"}, data, tw.AlignLeft); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "%d holiday(s)\n", len(holidays))
			return err
		},
	})
}

// weekdayOf returns the weekday name of an ISO date, or "" when it does not parse.
func weekdayOf(date string) string {
	t, err := time.Parse(contract.ISODateLayout, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// WriteCalendar outputs a Sunday-first month grid with holidays marked.
func WriteCalendar(month time.Time, weeks [][]view.Day, cfg *contract.Config) error {
	return writeOutput(cfg, renderer{
		data: struct {
			Month string       `json:"month"`
			Weeks [][]view.Day `json:"weeks"`
		}{month.Format(contract.MonthLayout), weeks},
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "weekday", "holiday"}, func(cw *csv.Writer) error {
				for _, week := range weeks {
					for _, d := range week {
						if d.Day == 0 {
							continue
						}
						if err := cw.Write([]string{d.Date, weekdayOf(d.Date), strconv.FormatBool(d.Holiday)}); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
		table: func(w io.Writer) error {
			return writeCalendarTable(w, month, weeks, cfg)
		},
	})
}

// writeCalendarTable renders the month grid. Holidays are marked with "*".
func writeCalendarTable(w io.Writer, month time.Time, weeks [][]view.Day, cfg *contract.Config) error {
	if _, err := fmt.Fprintln(w, heading("📅", month.Format("January 2006"), cfg)); err != nil {
		return err
	}
	data := make([][]string, 0, len(weeks))
	for _, week := range weeks {
		row := make([]string, len(week))
		for i, d := range week {
			if d.Day == 0 {
				continue
			}
			cell := strconv.Itoa(d.Day)
			if d.Holiday {
				cell += "*"
				if cfg.UseColors {
					cell = contract.HolidayColor.Sprint(cell)
				}
			}
			row[i] = cell
		}
		data = append(data, row)
	}
	if err := renderTable(w, weekdayHeader, data, tw.AlignRight); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "* holiday")
	return err
}
