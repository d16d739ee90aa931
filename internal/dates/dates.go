// Package dates holds the calendar date arithmetic: Monday-aligned week
// ranges, ISO week numbers and day shifting. All functions are pure and
// operate on midnight-normalized times to avoid DST drift.
package dates

import (
	"fmt"
	"time"
)

// KeyLayout is the wire format for calendar dates (DateKey).
const KeyLayout = "2006-01-02"

// Key formats a time as a YYYY-MM-DD date key.
func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseKey parses a YYYY-MM-DD date key in the local timezone.
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// Normalize truncates a time to midnight in its own location.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRangeOf returns the 7 dates of the Monday-started week containing
// anchor, in order Monday through Sunday. Sunday counts as day 7, so the
// offset back to Monday is (weekday+6)%7.
func WeekRangeOf(anchor time.Time) []time.Time {
	anchor = Normalize(anchor)
	offset := (int(anchor.Weekday()) + 6) % 7
	monday := anchor.AddDate(0, 0, -offset)

	week := make([]time.Time, 7)
	for i := range week {
		week[i] = monday.AddDate(0, 0, i)
	}
	return week
}

// ISOWeekNumber returns the ISO-8601 week number for a date.
func ISOWeekNumber(t time.Time) int {
	_, week := Normalize(t).ISOWeek()
	return week
}

// ShiftWeek moves a date by whole weeks.
func ShiftWeek(t time.Time, deltaWeeks int) time.Time {
	return Normalize(t).AddDate(0, 0, 7*deltaWeeks)
}

// ShiftDay moves a date by whole days.
func ShiftDay(t time.Time, deltaDays int) time.Time {
	return Normalize(t).AddDate(0, 0, deltaDays)
}

// Keys renders a range of dates as date keys, preserving order.
func Keys(dates []time.Time) []string {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = Key(d)
	}
	return keys
}

// MonthRange returns every date of the given month, in order.
func MonthRange(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	var days []time.Time
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
