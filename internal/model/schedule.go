package model

import "time"

// ScheduleRule maps each school day to the group on duty. The zero value
// has no duty on any day. It is immutable once built.
type ScheduleRule struct {
	groups map[time.Weekday]Group
}

// NewScheduleRule copies m, dropping weekend entries.
func NewScheduleRule(m map[time.Weekday]Group) ScheduleRule {
	groups := make(map[time.Weekday]Group, len(m))
	for d, g := range m {
		if IsSchoolDay(d) && g != "" {
			groups[d] = g
		}
	}
	return ScheduleRule{groups: groups}
}

// DefaultScheduleRule is the rotation used when no schedule is configured.
func DefaultScheduleRule() ScheduleRule {
	return NewScheduleRule(map[time.Weekday]Group{
		time.Monday:    GroupIM1,
		time.Tuesday:   GroupIT2,
		time.Wednesday: GroupIM2,
		time.Thursday:  GroupIT1,
		time.Friday:    GroupIT2,
	})
}

// GroupFor returns the group on duty for d.
func (r ScheduleRule) GroupFor(d time.Weekday) (Group, bool) {
	g, ok := r.groups[d]
	return g, ok
}
