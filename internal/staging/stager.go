// Package staging materializes duty days ahead of time: the week's
// assignments and each day's pending completion record.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
)

// ErrMissingAssignment is returned by StageDay when a duty day has no
// assignment. It points at a week that was never staged.
var ErrMissingAssignment = errors.New("no assignment for duty day")

type Assignments interface {
	Get(ctx context.Context, date time.Time) (*model.Assignment, error)
	Put(ctx context.Context, date time.Time, studentID int64) (bool, error)
}

type Completions interface {
	Get(ctx context.Context, date time.Time) (*model.CompletionRecord, error)
	CreateStaged(ctx context.Context, date time.Time, studentID int64, choreIDs []int64) (bool, error)
}

type Chores interface {
	ListForWeekday(ctx context.Context, d time.Weekday) ([]model.ChoreDefinition, error)
}

type Students interface {
	GetByID(ctx context.Context, id int64) (*model.Student, error)
}

// Selector picks the duty student of a group. A nil student means the
// group is empty.
type Selector interface {
	SelectForGroup(ctx context.Context, group model.Group, asOf time.Time) (*model.Student, error)
}

type Stager struct {
	rule        model.ScheduleRule
	selector    Selector
	assignments Assignments
	completions Completions
	chores      Chores
	students    Students
	notifier    notify.Notifier
	logger      *slog.Logger
}

type Deps struct {
	Rule        model.ScheduleRule
	Selector    Selector
	Assignments Assignments
	Completions Completions
	Chores      Chores
	Students    Students
	Notifier    notify.Notifier
	Logger      *slog.Logger
}

func New(d Deps) *Stager {
	n := d.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{
		rule:        d.Rule,
		selector:    d.Selector,
		assignments: d.Assignments,
		completions: d.Completions,
		chores:      d.Chores,
		students:    d.Students,
		notifier:    n,
		logger:      logger,
	}
}

// GetAssignment returns the student on duty for date, or nil when the
// day has no assignment.
func (s *Stager) GetAssignment(ctx context.Context, date time.Time) (*model.Student, error) {
	a, err := s.assignments.Get(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if a == nil {
		return nil, nil
	}
	st, err := s.students.GetByID(ctx, a.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student %d: %w", a.StudentID, err)
	}
	return st, nil
}
