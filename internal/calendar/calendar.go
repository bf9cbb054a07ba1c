// Package calendar compares timestamps at local calendar-day granularity.
package calendar

import (
	"errors"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Clock returns the current instant. Stores take one so tests can pin "today".
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

// StartOfDay returns local midnight of t's local calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DayKey formats the local calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format(DayLayout)
}

// TodayKey is DayKey of the clock's current instant.
func (c Clock) TodayKey() string {
	return DayKey(c())
}

// Today is local midnight of the clock's current day.
func (c Clock) Today() time.Time {
	return StartOfDay(c())
}

// IsToday reports whether t falls on the clock's current local day.
// A nil timestamp is never today.
func (c Clock) IsToday(t *time.Time) bool {
	if t == nil {
		return false
	}
	return DayKey(*t) == c.TodayKey()
}

// SameDay reports whether a and b share a local calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// Parse accepts either a date-only value (read as local midnight) or a full
// RFC 3339 timestamp.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if !strings.Contains(s, "T") {
		return time.ParseInLocation(DayLayout, s, time.Local)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Local datetime without an offset.
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}

// DayKeyOf extracts the local day key from an encoded timestamp. Date-only
// values are returned as-is.
func DayKeyOf(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return DayKey(t), nil
}

// IsWeekend reports Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
