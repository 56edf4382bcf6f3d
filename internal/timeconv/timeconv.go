// Package timeconv converts between UTC instants and local wall-clock
// representations and owns the two timestamp formats the rest of the system
// agrees on: the storage format (UTC, zone implied by convention) and the
// display format (local, 12-hour).
package timeconv

import (
	"fmt"
	"time"
)

const (
	// StorageLayout is the canonical timestamp format at the storage
	// boundary. Values are always UTC; the zone is implied, not encoded.
	StorageLayout = "2006-01-02 15:04:05"

	// DisplayLayout is the format shown to end users, in their local zone.
	DisplayLayout = "2006-01-02 3:04 PM"
)

// InvalidDateError reports calendar fields that do not form a real date,
// e.g. month 13 or April 31.
type InvalidDateError struct {
	Field string
	Value int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

// MalformedTimestampError reports a storage timestamp string that does not
// match StorageLayout.
type MalformedTimestampError struct {
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q: want %q", e.Value, StorageLayout)
}

// ToUTC interprets the given calendar fields as wall-clock time in loc and
// returns the equivalent UTC instant.
func ToUTC(year int, month time.Month, day, hour, minute, second int, loc *time.Location) (time.Time, error) {
	if err := validateFields(year, month, day, hour, minute, second); err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, minute, second, 0, loc).UTC(), nil
}

// UTCToLocal projects a UTC instant into loc. It never fails: any instant
// has a representation in any zone.
func UTCToLocal(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// FormatStorage renders t in the canonical storage format. t is normalized
// to UTC first so the zone-implicit convention holds regardless of the
// location attached to t.
func FormatStorage(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// ParseStorage parses a canonical storage timestamp, returning the instant
// in UTC.
func ParseStorage(s string) (time.Time, error) {
	t, err := time.ParseInLocation(StorageLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &MalformedTimestampError{Value: s}
	}
	return t, nil
}

// FormatDisplay renders t for end users in loc.
func FormatDisplay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

// validateFields rejects fields time.Date would silently normalize
// (month 13 becomes January of the next year, and so on).
func validateFields(year int, month time.Month, day, hour, minute, second int) error {
	if month < time.January || month > time.December {
		return &InvalidDateError{Field: "month", Value: int(month)}
	}
	if day < 1 || day > daysIn(year, month) {
		return &InvalidDateError{Field: "day", Value: day}
	}
	if hour < 0 || hour > 23 {
		return &InvalidDateError{Field: "hour", Value: hour}
	}
	if minute < 0 || minute > 59 {
		return &InvalidDateError{Field: "minute", Value: minute}
	}
	if second < 0 || second > 59 {
		return &InvalidDateError{Field: "second", Value: second}
	}
	return nil
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
