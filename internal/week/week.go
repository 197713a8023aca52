// Package week computes ISO-8601 week identifiers used as the primary key
// for weekly plans.
package week

import (
	"fmt"
	"time"
)

// ID returns the week identifier for the week containing t, in the form
// "{isoYear}-w{isoWeek:02d}", e.g. "2026-w08".
func ID(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%d-w%02d", year, wk)
}

// Number returns the ISO-8601 week number (Thursday-anchored) for t.
func Number(t time.Time) int {
	_, wk := t.ISOWeek()
	return wk
}

// MondayOf returns midnight of the Monday of the week containing t,
// in t's location.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// SundayOf returns midnight of the Sunday closing the week containing t.
func SundayOf(t time.Time) time.Time {
	return MondayOf(t).AddDate(0, 0, 6)
}

// NextMonday returns the Monday of the week after the one containing t.
func NextMonday(t time.Time) time.Time {
	return MondayOf(t).AddDate(0, 0, 7)
}

// Parse validates a week identifier and returns its ISO year and week number.
func Parse(weekID string) (year, number int, err error) {
	if _, err := fmt.Sscanf(weekID, "%d-w%02d", &year, &number); err != nil {
		return 0, 0, fmt.Errorf("invalid week id %q: %w", weekID, err)
	}
	if number < 1 || number > 53 {
		return 0, 0, fmt.Errorf("invalid week id %q: week %d out of range", weekID, number)
	}
	return year, number, nil
}
