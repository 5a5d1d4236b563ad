package model

import "time"

type ChoreDefinition struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Days      WeekdaySet `json:"days"`
	SortOrder int        `json:"sort_order"`
}

// AppliesOn reports whether the chore is scheduled on d.
func (c ChoreDefinition) AppliesOn(d time.Weekday) bool {
	return c.Days.Has(d)
}

// ChoreIDs extracts the ids of defs in order.
func ChoreIDs(defs []ChoreDefinition) []int64 {
	ids := make([]int64, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
