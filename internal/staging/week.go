package staging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
)

// SlotOutcome describes what StageWeek did for one day.
type SlotOutcome string

const (
	SlotAssigned   SlotOutcome = "assigned"
	SlotExisting   SlotOutcome = "existing"
	SlotNoRule     SlotOutcome = "no_rule"
	SlotNoStudents SlotOutcome = "no_students"
	SlotFailed     SlotOutcome = "failed"
)

type SlotResult struct {
	Date      time.Time   `json:"date"`
	Group     model.Group `json:"group,omitempty"`
	StudentID int64       `json:"student_id,omitempty"`
	Outcome   SlotOutcome `json:"outcome"`
	Error     string      `json:"error,omitempty"`

	student *model.Student
}

type WeekResult struct {
	Week   int          `json:"week"`
	Monday time.Time    `json:"monday"`
	Slots  []SlotResult `json:"slots"`
}

// Assigned counts the days this run assigned.
func (r WeekResult) Assigned() int {
	n := 0
	for _, s := range r.Slots {
		if s.Outcome == SlotAssigned {
			n++
		}
	}
	return n
}

// StageWeek assigns a student to every school day of the ISO week that
// contains ref. Days that already have an assignment are left alone. A
// failure on one day does not stop the others; the failures are joined
// into the returned error and the result still describes every day.
func (s *Stager) StageWeek(ctx context.Context, ref time.Time) (WeekResult, error) {
	days := model.SchoolWeek(ref)
	res := WeekResult{Week: model.ISOWeek(ref), Monday: days[0]}

	var errs []error
	for _, day := range days {
		slot, err := s.stageSlot(ctx, day)
		if err != nil {
			slot.Outcome = SlotFailed
			slot.Error = err.Error()
			errs = append(errs, fmt.Errorf("stage %s: %w", model.FormatDate(day), err))
			s.logger.Error("staging day failed", "date", model.FormatDate(day), "error", err)
		}
		res.Slots = append(res.Slots, slot)
	}

	if res.Assigned() > 0 {
		s.notifier.Notify(ctx, notify.WeeklyAssignments(weeklyPayload(res)))
	}
	s.logger.Info("week staged", "week", res.Week, "monday", model.FormatDate(res.Monday), "assigned", res.Assigned(), "failed", len(errs))
	return res, errors.Join(errs...)
}

func (s *Stager) stageSlot(ctx context.Context, day time.Time) (SlotResult, error) {
	slot := SlotResult{Date: day}
	group, ok := s.rule.GroupFor(day.Weekday())
	if !ok {
		slot.Outcome = SlotNoRule
		s.logger.Info("no duty group configured", "date", model.FormatDate(day), "weekday", day.Weekday())
		return slot, nil
	}
	slot.Group = group

	existing, err := s.assignments.Get(ctx, day)
	if err != nil {
		return slot, fmt.Errorf("get assignment: %w", err)
	}
	if existing != nil {
		return s.existingSlot(ctx, slot, existing.StudentID)
	}

	st, err := s.selector.SelectForGroup(ctx, group, day)
	if err != nil {
		return slot, fmt.Errorf("select student: %w", err)
	}
	if st == nil {
		slot.Outcome = SlotNoStudents
		s.logger.Warn("no students in group", "date", model.FormatDate(day), "group", group)
		return slot, nil
	}

	created, err := s.assignments.Put(ctx, day, st.ID)
	if err != nil {
		return slot, fmt.Errorf("put assignment: %w", err)
	}
	if !created {
		// Another run assigned the day between our read and write.
		a, err := s.assignments.Get(ctx, day)
		if err != nil {
			return slot, fmt.Errorf("get assignment: %w", err)
		}
		if a == nil {
			return slot, fmt.Errorf("assignment for %s vanished", model.FormatDate(day))
		}
		return s.existingSlot(ctx, slot, a.StudentID)
	}

	slot.StudentID = st.ID
	slot.Outcome = SlotAssigned
	slot.student = st
	s.logger.Info("student assigned", "date", model.FormatDate(day), "group", group, "student_id", st.ID, "student", st.Name)
	return slot, nil
}

func (s *Stager) existingSlot(ctx context.Context, slot SlotResult, studentID int64) (SlotResult, error) {
	slot.StudentID = studentID
	slot.Outcome = SlotExisting
	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return slot, fmt.Errorf("get student %d: %w", studentID, err)
	}
	slot.student = st
	return slot, nil
}

func weeklyPayload(res WeekResult) notify.WeeklyPayload {
	p := notify.WeeklyPayload{Week: res.Week, Monday: res.Monday}
	for _, slot := range res.Slots {
		wd := notify.WeekDay{Date: slot.Date, Group: slot.Group}
		if slot.student != nil {
			ref := notify.RefStudent(*slot.student)
			wd.Student = &ref
		}
		p.Days = append(p.Days, wd)
	}
	return p
}
