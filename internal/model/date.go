package model

import (
	"fmt"
	"time"
)

// DateLayout is the storage and wire format of a calendar day.
const DateLayout = "2006-01-02"

// Day returns the calendar day of t as midnight UTC. The year, month and
// day are taken from t in its own location, so callers convert to the
// configured location first.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(time.Now().In(loc))
}

func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// AddDays moves a calendar day by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// WeekStart returns the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// SchoolWeek returns Monday through Friday of the ISO week containing t.
func SchoolWeek(t time.Time) []time.Time {
	monday := WeekStart(t)
	days := make([]time.Time, 0, 5)
	for i := 0; i < 5; i++ {
		days = append(days, monday.AddDate(0, 0, i))
	}
	return days
}

// ISOWeek returns the ISO 8601 week number of t.
func ISOWeek(t time.Time) int {
	_, week := Day(t).ISOWeek()
	return week
}
