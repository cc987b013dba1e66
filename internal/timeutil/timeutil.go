package timeutil

import (
	"errors"
	"strings"
	"time"
)

// DayFormat is the calendar-day layout used by the GitHub API and the
// history tables.
const DayFormat = "2006-01-02"

var ErrInvalidDay = errors.New("invalid day")

// ParseDay parses a YYYY-MM-DD string. Empty input is reported as invalid.
func ParseDay(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, ErrInvalidDay
	}
	t, err := time.Parse(DayFormat, v)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

// FormatDay renders the timestamp as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// DayRange is an inclusive [Since, Until] calendar-day span.
type DayRange struct {
	Since time.Time
	Until time.Time
}

// NewDayRange validates that since does not come after until.
func NewDayRange(since, until time.Time) (DayRange, error) {
	if until.Before(since) {
		return DayRange{}, ErrInvalidDay
	}
	return DayRange{Since: since, Until: until}, nil
}

// TrailingDays returns the range ending at now and starting days earlier.
func TrailingDays(now time.Time, days int) DayRange {
	if days < 0 {
		days = 0
	}
	day := TruncateToDay(now)
	return DayRange{Since: day.AddDate(0, 0, -days), Until: day}
}

// TruncateToDay normalizes the timestamp to midnight UTC.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday beginning the week containing t.
func WeekStart(t time.Time) time.Time {
	day := TruncateToDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekLabel formats the Monday-start week bucket for chart axes, e.g. "Jan 06".
func WeekLabel(t time.Time) string {
	return WeekStart(t).Format("Jan 02")
}

// MonthLabel formats the month bucket for chart axes, e.g. "Jan 24".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 06")
}
