package model

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of school days (Monday..Friday). The empty set means
// every school day.
type WeekdaySet uint8

func weekdayBit(d time.Weekday) WeekdaySet {
	if !IsSchoolDay(d) {
		return 0
	}
	return 1 << uint(d-time.Monday)
}

// IsSchoolDay reports whether d is Monday through Friday.
func IsSchoolDay(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

// NewWeekdaySet builds a set from days; weekend days are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= weekdayBit(d)
	}
	return s
}

// Has reports whether the set covers d. Weekends are never covered.
func (s WeekdaySet) Has(d time.Weekday) bool {
	if !IsSchoolDay(d) {
		return false
	}
	if s == 0 {
		return true
	}
	return s&weekdayBit(d) != 0
}

// Days lists the covered days in week order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Monday; d <= time.Friday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) String() string {
	if s == 0 {
		return "every day"
	}
	names := make([]string, 0, 5)
	for _, d := range s.Days() {
		names = append(names, strings.ToLower(d.String()[:3]))
	}
	return strings.Join(names, ",")
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// ParseWeekday accepts English day names or three-letter abbreviations.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return d, nil
}
