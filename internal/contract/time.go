package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date layouts used across reports.
const (
	ISODateLayout      = "2006-01-02"
	DisplayDateLayout  = "02/01/2006"
	TimesheetDayLayout = "02/Jan/2006"
	ClockLayout        = "03:04 PM"
	MonthLayout        = "2006-01"
)

// inputDateLayouts are tried in order when parsing user or worklog dates.
var inputDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02 15:04",
	ISODateLayout,
	"02/Jan/06 3:04 PM",
	"02/Jan/2006 3:04 PM",
	"02/Jan/2006",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	DisplayDateLayout,
	"1/2/06 15:04",
	"1/2/2006",
}

// ParseDate parses s with the first matching layout and drops any timezone,
// keeping the wall-clock reading.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// Define the regular expression to capture "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseLookbackDuration converts strings like "1 hour" or "90m" into a time.Duration.
// Go duration syntax is tried first, then the human-readable form.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	var unit time.Duration
	switch matches[2] {
	case "year":
		unit = 365 * 24 * time.Hour // approximation
	case "month":
		unit = 30 * 24 * time.Hour // approximation
	case "week":
		unit = 7 * 24 * time.Hour
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	default:
		unit = time.Minute
	}

	if value <= 0 {
		return 0, errors.New("duration must be positive")
	}
	if value > int(math.MaxInt64/int64(unit)) {
		return 0, fmt.Errorf("duration too large: %s", s)
	}
	return time.Duration(value) * unit, nil
}
