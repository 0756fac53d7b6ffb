// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and request bodies and
	// is also the output date format.
	DateLayout = constants.DateLayout

	secondsPerDay = 24 * 60 * 60
)

// MaxDate is the last calendar date DateLayout and the JSON encoding of
// time.Time can represent.
var MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a calendar date. Both the plain date layout and RFC 3339
// timestamps are accepted since backend payloads carry either; the result is
// always truncated to UTC midnight.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty")
	}
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: expected %s or RFC 3339", value, DateLayout)
	}
	return Truncate(t), nil
}

// ParseOptionalDate parses value when it is non-empty and returns nil otherwise.
func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Truncate drops the time of day, keeping the calendar date as seen in t's
// own location, and returns it at UTC midnight.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from start to end. It is
// negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int((Truncate(end).Unix() - Truncate(start).Unix()) / secondsPerDay)
}

// MonthsRemaining returns the horizon between asOf and target in fixed 30-day
// months, rounded up and never less than one.
func MonthsRemaining(asOf, target time.Time) int {
	days := DaysBetween(asOf, target)
	months := 0
	if days > 0 {
		months = (days + constants.DaysPerMonth - 1) / constants.DaysPerMonth
	}
	if months < constants.MinMonthsRemaining {
		months = constants.MinMonthsRemaining
	}
	return months
}

// AddApproxMonths offsets date by the given number of fixed 30-day months.
func AddApproxMonths(date time.Time, months int) time.Time {
	return Truncate(date).AddDate(0, 0, months*constants.DaysPerMonth)
}

// MaxApproxMonths returns how many whole 30-day months can be added to from
// without passing MaxDate. It is negative when from is already past MaxDate.
func MaxApproxMonths(from time.Time) int64 {
	days := DaysBetween(from, MaxDate)
	if days < 0 {
		return -1
	}
	return int64(days / constants.DaysPerMonth)
}

// DateBeforeDate returns true if first is strictly before second when compared
// as calendar dates.
func DateBeforeDate(first, second time.Time) bool {
	return Truncate(first).Before(Truncate(second))
}

// Format renders a date in DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Ptr returns a pointer to a copy of t.
func Ptr(t time.Time) *time.Time {
	return &t
}
