// Package completion records what the duty student reported for a day.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
	"github.com/dukerupert/dutyroster/internal/store"
)

var (
	// ErrNoAssignment is returned when a submission names no student and
	// the day has no assignment to take one from.
	ErrNoAssignment = errors.New("no assignment for date")
	// ErrUnknownStudent is returned when the submitting student is not on
	// the roster.
	ErrUnknownStudent = errors.New("unknown student")
	// ErrAlreadySubmitted is returned under the reject policy when the day
	// is already submitted.
	ErrAlreadySubmitted = store.ErrAlreadySubmitted
	// ErrNotFound is returned when a completion id does not exist.
	ErrNotFound = errors.New("completion not found")
)

// ResubmitPolicy decides what happens to a second submission for a day.
type ResubmitPolicy string

const (
	ResubmitOverwrite ResubmitPolicy = "overwrite"
	ResubmitReject    ResubmitPolicy = "reject"
)

func ParseResubmitPolicy(s string) (ResubmitPolicy, error) {
	switch p := ResubmitPolicy(s); p {
	case ResubmitOverwrite, ResubmitReject:
		return p, nil
	case "":
		return ResubmitOverwrite, nil
	default:
		return "", fmt.Errorf("unknown resubmit policy %q", s)
	}
}

type Completions interface {
	Get(ctx context.Context, date time.Time) (*model.CompletionRecord, error)
	GetByID(ctx context.Context, id int64) (*model.CompletionRecord, error)
	Submit(ctx context.Context, p store.SubmitParams) (int64, error)
	SetAttachment(ctx context.Context, id int64, slot int) (bool, error)
}

type Assignments interface {
	Get(ctx context.Context, date time.Time) (*model.Assignment, error)
}

type Students interface {
	GetByID(ctx context.Context, id int64) (*model.Student, error)
}

type Chores interface {
	ListForWeekday(ctx context.Context, d time.Weekday) ([]model.ChoreDefinition, error)
}

// Submission is one report of a day's chores. StudentID zero means the
// day's assigned student.
type Submission struct {
	Date         time.Time
	StudentID    int64
	Completed    []int64
	NotCompleted []int64
	Attachments  model.AttachmentFlags
	Comment      string
}

type Tracker struct {
	completions Completions
	assignments Assignments
	students    Students
	chores      Chores
	notifier    notify.Notifier
	policy      ResubmitPolicy
	logger      *slog.Logger
}

type Deps struct {
	Completions Completions
	Assignments Assignments
	Students    Students
	Chores      Chores
	Notifier    notify.Notifier
	Policy      ResubmitPolicy
	Logger      *slog.Logger
}

func New(d Deps) *Tracker {
	t := &Tracker{
		completions: d.Completions,
		assignments: d.Assignments,
		students:    d.Students,
		chores:      d.Chores,
		notifier:    d.Notifier,
		policy:      d.Policy,
		logger:      d.Logger,
	}
	if t.notifier == nil {
		t.notifier = notify.Nop{}
	}
	if t.policy == "" {
		t.policy = ResubmitOverwrite
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// RecordOutcome writes sub as the submitted record for its day, creating
// the record when the day was never staged. It returns the record id that
// attachment uploads refer to.
func (t *Tracker) RecordOutcome(ctx context.Context, sub Submission) (int64, error) {
	date := model.Day(sub.Date)
	key := model.FormatDate(date)

	studentID := sub.StudentID
	if studentID == 0 {
		a, err := t.assignments.Get(ctx, date)
		if err != nil {
			return 0, fmt.Errorf("get assignment: %w", err)
		}
		if a == nil {
			return 0, fmt.Errorf("submit %s: %w", key, ErrNoAssignment)
		}
		studentID = a.StudentID
	}
	student, err := t.students.GetByID(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("get student %d: %w", studentID, err)
	}
	if student == nil {
		return 0, fmt.Errorf("submit %s: student %d: %w", key, studentID, ErrUnknownStudent)
	}

	scheduled, err := t.chores.ListForWeekday(ctx, date.Weekday())
	if err != nil {
		return 0, fmt.Errorf("list chores: %w", err)
	}
	done, notDone, dropped := Normalize(scheduled, sub.Completed, sub.NotCompleted)
	if len(dropped) > 0 {
		t.logger.Debug("ignoring unscheduled chore ids", "date", key, "ids", dropped)
	}

	id, err := t.completions.Submit(ctx, store.SubmitParams{
		Date:         date,
		StudentID:    studentID,
		Completed:    model.ChoreIDs(done),
		NotCompleted: model.ChoreIDs(notDone),
		Attachments:  sub.Attachments,
		Comment:      sub.Comment,
		Overwrite:    t.policy == ResubmitOverwrite,
	})
	if errors.Is(err, store.ErrAlreadySubmitted) {
		t.logger.Warn("resubmission rejected", "date", key, "student_id", studentID)
		return 0, fmt.Errorf("submit %s: %w", key, ErrAlreadySubmitted)
	}
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", key, err)
	}
	t.logger.Info("completion submitted", "date", key, "completion_id", id, "student_id", studentID,
		"completed", len(done), "not_completed", len(notDone))

	t.notifier.Notify(ctx, notify.CompletionSubmitted(notify.CompletionPayload{
		CompletionID: id,
		Date:         date,
		Student:      notify.RefStudent(*student),
		Completed:    notify.RefChores(done),
		NotCompleted: notify.RefChores(notDone),
		Attachments:  sub.Attachments,
		Comment:      sub.Comment,
	}))
	return id, nil
}

// GetCompletion returns the record for date, or nil when the day is
// unstaged.
func (t *Tracker) GetCompletion(ctx context.Context, date time.Time) (*model.CompletionRecord, error) {
	rec, err := t.completions.Get(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return rec, nil
}

// MarkAttachment flags an uploaded image slot on record id.
func (t *Tracker) MarkAttachment(ctx context.Context, id int64, slot int) error {
	if !model.ValidSlot(slot) {
		return fmt.Errorf("invalid attachment slot %d", slot)
	}
	ok, err := t.completions.SetAttachment(ctx, id, slot)
	if err != nil {
		return fmt.Errorf("mark attachment: %w", err)
	}
	if !ok {
		return fmt.Errorf("completion %d: %w", id, ErrNotFound)
	}
	t.logger.Debug("attachment marked", "completion_id", id, "slot", slot)
	return nil
}
