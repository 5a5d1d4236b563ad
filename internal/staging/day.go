package staging

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
)

// DayOutcome describes what StageDay did.
type DayOutcome string

const (
	DayStaged        DayOutcome = "staged"
	DayNoDuty        DayOutcome = "no_duty"
	DayAlreadyStaged DayOutcome = "already_staged"
	DayNoChores      DayOutcome = "no_chores"
)

type DayResult struct {
	Date      time.Time   `json:"date"`
	Outcome   DayOutcome  `json:"outcome"`
	Group     model.Group `json:"group,omitempty"`
	StudentID int64       `json:"student_id,omitempty"`
	ChoreIDs  []int64     `json:"chore_ids,omitempty"`
}

// StageDay creates the pending completion record for date, with every
// chore of the weekday marked not completed. Days without a duty group,
// days already staged and days without chores are no-ops. The day's
// assignment must already exist; otherwise ErrMissingAssignment.
func (s *Stager) StageDay(ctx context.Context, date time.Time) (DayResult, error) {
	date = model.Day(date)
	res := DayResult{Date: date}
	key := model.FormatDate(date)

	group, ok := s.rule.GroupFor(date.Weekday())
	if !ok {
		res.Outcome = DayNoDuty
		s.logger.Info("no duty today", "date", key, "weekday", date.Weekday())
		return res, nil
	}
	res.Group = group

	existing, err := s.completions.Get(ctx, date)
	if err != nil {
		return res, fmt.Errorf("get completion: %w", err)
	}
	if existing != nil {
		res.Outcome = DayAlreadyStaged
		res.StudentID = existing.StudentID
		s.logger.Debug("day already staged", "date", key, "status", existing.Status())
		return res, nil
	}

	chores, err := s.chores.ListForWeekday(ctx, date.Weekday())
	if err != nil {
		return res, fmt.Errorf("list chores: %w", err)
	}
	if len(chores) == 0 {
		res.Outcome = DayNoChores
		s.logger.Info("no chores scheduled", "date", key, "weekday", date.Weekday())
		return res, nil
	}

	a, err := s.assignments.Get(ctx, date)
	if err != nil {
		return res, fmt.Errorf("get assignment: %w", err)
	}
	if a == nil {
		s.logger.Error("duty day has no assignment", "date", key, "group", group)
		return res, fmt.Errorf("stage %s: %w", key, ErrMissingAssignment)
	}
	res.StudentID = a.StudentID
	res.ChoreIDs = model.ChoreIDs(chores)

	created, err := s.completions.CreateStaged(ctx, date, a.StudentID, res.ChoreIDs)
	if err != nil {
		return res, fmt.Errorf("create staged completion: %w", err)
	}
	if !created {
		res.Outcome = DayAlreadyStaged
		return res, nil
	}
	res.Outcome = DayStaged
	s.logger.Info("day staged", "date", key, "group", group, "student_id", a.StudentID, "chores", len(chores))

	st, err := s.students.GetByID(ctx, a.StudentID)
	if err != nil || st == nil {
		// The record is written; only the announcement is lost.
		s.logger.Warn("skipping daily notification", "date", key, "student_id", a.StudentID, "error", err)
		return res, nil
	}
	s.notifier.Notify(ctx, notify.DailyAssignment(notify.DailyPayload{
		Date:    date,
		Group:   group,
		Student: notify.RefStudent(*st),
		Chores:  notify.RefChores(chores),
	}))
	return res, nil
}
