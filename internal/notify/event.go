// Package notify carries duty events from the core to outside channels.
// The core only builds Events; sinks decide how to present them.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/dutyroster/internal/model"
)

type Kind string

const (
	KindDailyAssignment     Kind = "daily_assignment_ready"
	KindWeeklyAssignments   Kind = "weekly_assignments_ready"
	KindCompletionSubmitted Kind = "completion_submitted"
)

// Event is one notification. Exactly one payload field is set, matching
// Kind.
type Event struct {
	ID         uuid.UUID          `json:"id"`
	Kind       Kind               `json:"kind"`
	OccurredAt time.Time          `json:"occurred_at"`
	Daily      *DailyPayload      `json:"daily,omitempty"`
	Weekly     *WeeklyPayload     `json:"weekly,omitempty"`
	Completion *CompletionPayload `json:"completion,omitempty"`
}

type StudentRef struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Group model.Group `json:"group"`
}

func RefStudent(s model.Student) StudentRef {
	return StudentRef{ID: s.ID, Name: s.Name, Group: s.Group}
}

type ChoreRef struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

func RefChores(defs []model.ChoreDefinition) []ChoreRef {
	refs := make([]ChoreRef, 0, len(defs))
	for _, d := range defs {
		refs = append(refs, ChoreRef{ID: d.ID, Text: d.Text})
	}
	return refs
}

// DailyPayload announces the duty student and chores for one day.
type DailyPayload struct {
	Date    time.Time   `json:"date"`
	Group   model.Group `json:"group"`
	Student StudentRef  `json:"student"`
	Chores  []ChoreRef  `json:"chores"`
}

// WeekDay is one school day of a weekly plan. Student is nil when nobody
// could be assigned.
type WeekDay struct {
	Date    time.Time   `json:"date"`
	Group   model.Group `json:"group,omitempty"`
	Student *StudentRef `json:"student,omitempty"`
}

type WeeklyPayload struct {
	Week   int       `json:"week"`
	Monday time.Time `json:"monday"`
	Days   []WeekDay `json:"days"`
}

// CompletionPayload is the full outcome of a submitted day.
type CompletionPayload struct {
	CompletionID int64                 `json:"completion_id"`
	Date         time.Time             `json:"date"`
	Student      StudentRef            `json:"student"`
	Completed    []ChoreRef            `json:"completed"`
	NotCompleted []ChoreRef            `json:"not_completed"`
	Attachments  model.AttachmentFlags `json:"attachments"`
	Comment      string                `json:"comment,omitempty"`
}

// AllDone reports whether every chore of the day was completed.
func (p CompletionPayload) AllDone() bool {
	return len(p.NotCompleted) == 0
}

func newEvent(kind Kind) Event {
	return Event{ID: uuid.New(), Kind: kind, OccurredAt: time.Now().UTC()}
}

func DailyAssignment(p DailyPayload) Event {
	ev := newEvent(KindDailyAssignment)
	ev.Daily = &p
	return ev
}

func WeeklyAssignments(p WeeklyPayload) Event {
	ev := newEvent(KindWeeklyAssignments)
	ev.Weekly = &p
	return ev
}

func CompletionSubmitted(p CompletionPayload) Event {
	ev := newEvent(KindCompletionSubmitted)
	ev.Completion = &p
	return ev
}
