package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStep(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		rule Recurrence
		want time.Time
	}{
		{"daily", day(2024, 3, 15), Recurrence{Type: Daily}, day(2024, 3, 16)},
		{"daily interval", day(2024, 3, 30), Recurrence{Type: Daily, Interval: 3}, day(2024, 4, 2)},
		{"weekdays friday to monday", day(2024, 3, 15), Recurrence{Type: Weekdays, Interval: 5}, day(2024, 3, 18)},
		{"weekdays saturday to monday", day(2024, 3, 16), Recurrence{Type: Weekdays}, day(2024, 3, 18)},
		{"weekdays midweek", day(2024, 3, 12), Recurrence{Type: Weekdays}, day(2024, 3, 13)},
		{"weekly no days", day(2024, 3, 15), Recurrence{Type: Weekly, Interval: 2}, day(2024, 3, 29)},
		{"weekly later day this week", day(2024, 3, 11), Recurrence{Type: Weekly, DaysOfWeek: []int{5, 1}}, day(2024, 3, 15)},
		{"weekly wraps by interval", day(2024, 3, 15), Recurrence{Type: Weekly, Interval: 2, DaysOfWeek: []int{1, 5}}, day(2024, 3, 25)},
		{"weekly wraps to sunday", day(2024, 3, 16), Recurrence{Type: Weekly, DaysOfWeek: []int{0, 6}}, day(2024, 3, 17)},
		{"weekly ignores invalid days", day(2024, 3, 11), Recurrence{Type: Weekly, DaysOfWeek: []int{9, -1}}, day(2024, 3, 18)},
		{"monthly", day(2024, 3, 1), Recurrence{Type: Monthly}, day(2024, 4, 1)},
		{"monthly clamps", day(2024, 1, 31), Recurrence{Type: Monthly}, day(2024, 2, 29)},
		{"monthly across year", day(2024, 11, 15), Recurrence{Type: Monthly, Interval: 3}, day(2025, 2, 15)},
		{"monthly day of month", day(2024, 2, 10), Recurrence{Type: Monthly, DayOfMonth: 31}, day(2024, 3, 31)},
		{"yearly", day(2024, 6, 1), Recurrence{Type: Yearly}, day(2025, 6, 1)},
		{"yearly leap day", day(2024, 2, 29), Recurrence{Type: Yearly}, day(2025, 2, 28)},
		{"unknown type", day(2024, 3, 15), Recurrence{Type: "fortnightly", Interval: 14}, day(2024, 3, 16)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Step(tc.from, tc.rule))
		})
	}
}

func TestNextOccurrence_CatchUp(t *testing.T) {
	today := day(2024, 3, 20)

	// daily interval 1, ten days behind: lands exactly on today
	assert.Equal(t, today, NextOccurrence(today.AddDate(0, 0, -10), Recurrence{Type: Daily}, today))

	// interval 3 from ten days back: -7, -4, -1, +2
	assert.Equal(t, day(2024, 3, 22), NextOccurrence(today.AddDate(0, 0, -10), Recurrence{Type: Daily, Interval: 3}, today))

	// an anchor in the future still advances exactly once
	assert.Equal(t, day(2024, 4, 1), NextOccurrence(day(2024, 3, 25), Recurrence{Type: Weekly}, today))

	// anchor with a time of day is normalised first
	assert.Equal(t, day(2024, 3, 21), NextOccurrence(time.Date(2024, 3, 20, 23, 0, 0, 0, time.Local), Recurrence{Type: Daily}, today))
}

func TestNextOccurrence_NeverBeforeTodayAndAfterAnchor(t *testing.T) {
	today := day(2024, 3, 20)
	rules := []Recurrence{
		{Type: Daily},
		{Type: Weekdays},
		{Type: Weekly, DaysOfWeek: []int{2, 4}},
		{Type: Monthly},
		{Type: Yearly},
	}
	for _, rule := range rules {
		for offset := -400; offset <= 30; offset += 37 {
			anchor := today.AddDate(0, 0, offset)
			next := NextOccurrence(anchor, rule, today)
			assert.False(t, next.Before(today), "%s from %s", rule.Type, anchor)
			assert.True(t, next.After(anchor), "%s from %s", rule.Type, anchor)
		}
	}
}

func TestInitialDate_WeeklyWithinInterval(t *testing.T) {
	// Wednesday, only Tuesdays listed: next Tuesday
	got := InitialDate(day(2024, 3, 13), Recurrence{Type: Weekly, Interval: 2, DaysOfWeek: []int{2}})
	assert.Equal(t, day(2024, 3, 19), got)
}
