package worklog

import (
	"io"
	"sort"

	"github.com/huangsam/timesheet/internal/contract"
)

// ParseHolidayWorkbook collects every date found on the first sheet of an
// uploaded workbook. Cells that are not dates are ignored.
// The result is deduplicated and sorted.
func ParseHolidayWorkbook(r io.Reader) ([]string, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, c := range row {
			if c == "" {
				continue
			}
			t, err := ParseDateCell(c)
			if err != nil {
				continue
			}
			seen[t.Format(contract.ISODateLayout)] = struct{}{}
		}
	}

	holidays := make([]string, 0, len(seen))
	for d := range seen {
		holidays = append(holidays, d)
	}
	sort.Strings(holidays)
	return holidays, nil
}
