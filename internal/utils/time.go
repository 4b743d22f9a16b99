package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tracklit/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DayOf returns the calendar day (YYYY-MM-DD) of t as observed in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DateFormat)
}

// ParseInstant parses an RFC 3339 timestamp. Surrounding whitespace is ignored.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(constants.InstantFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected RFC 3339, e.g. 2023-12-01T10:00:00Z): %w", s, err)
	}
	return t, nil
}

// ParseDay parses a date string (YYYY-MM-DD).
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// ValidateDay reports whether day is a well-formed YYYY-MM-DD date.
func ValidateDay(day string) bool {
	_, err := ParseDay(day)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// DaysBetween returns the number of calendar days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end string) (int, error) {
	s, err := ParseDay(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return 0, err
	}
	// Both values are UTC midnights, so the division is exact.
	return int(e.Sub(s).Hours() / 24), nil
}
