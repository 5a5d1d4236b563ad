// Package chore derives the display status of each chore on a duty day
// from the day's completion record.
package chore

import (
	"slices"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusCompleted    Status = "completed"
	StatusNotCompleted Status = "not_completed"
	StatusOverdue      Status = "overdue"
)

type ChoreWithStatus struct {
	model.ChoreDefinition
	Status Status `json:"status"`
}

// ComputeStatus determines the status of def on date. Outcomes only count
// once the record is submitted; before that a chore is pending, or overdue
// once the day has passed.
func ComputeStatus(def model.ChoreDefinition, rec *model.CompletionRecord, date, today time.Time) Status {
	if rec.Status() == model.StatusSubmitted {
		if slices.Contains(rec.CompletedChoreIDs, def.ID) {
			return StatusCompleted
		}
		return StatusNotCompleted
	}
	if model.Day(date).Before(model.Day(today)) {
		return StatusOverdue
	}
	return StatusPending
}

// ForDay returns every chore scheduled on date with its status, in the
// order given.
func ForDay(defs []model.ChoreDefinition, rec *model.CompletionRecord, date, today time.Time) []ChoreWithStatus {
	out := make([]ChoreWithStatus, 0, len(defs))
	for _, def := range defs {
		if !def.AppliesOn(date.Weekday()) {
			continue
		}
		out = append(out, ChoreWithStatus{
			ChoreDefinition: def,
			Status:          ComputeStatus(def, rec, date, today),
		})
	}
	return out
}

// Summary counts chores per status.
func Summary(chores []ChoreWithStatus) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, c := range chores {
		counts[c.Status]++
	}
	return counts
}
