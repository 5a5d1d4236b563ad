package completion

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/database"
	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
	"github.com/dukerupert/dutyroster/internal/store"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixture struct {
	tracker     *Tracker
	assignments *store.AssignmentStore
	completions *store.CompletionStore
	events      *recorder
}

var (
	wednesday = time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	friday    = time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
)

func setup(t *testing.T, policy ResubmitPolicy) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	students := store.NewStudentStore(db)
	chores := store.NewChoreStore(db)
	for _, st := range []model.Student{
		{ID: 1, Name: "Ada", Group: model.GroupIM2},
		{ID: 2, Name: "Ben", Group: model.GroupIM2},
	} {
		if err := students.Upsert(ctx, st); err != nil {
			t.Fatalf("seed student: %v", err)
		}
	}
	for _, c := range []model.ChoreDefinition{
		{ID: 1, Text: "Sweep the floor", SortOrder: 0},
		{ID: 2, Text: "Wipe the whiteboard", SortOrder: 1},
		{ID: 3, Text: "Take out the trash", Days: model.NewWeekdaySet(time.Friday), SortOrder: 2},
	} {
		if err := chores.Upsert(ctx, c); err != nil {
			t.Fatalf("seed chore: %v", err)
		}
	}

	f := &fixture{
		assignments: store.NewAssignmentStore(db),
		completions: store.NewCompletionStore(db),
		events:      &recorder{},
	}
	f.tracker = New(Deps{
		Completions: f.completions,
		Assignments: f.assignments,
		Students:    students,
		Chores:      chores,
		Notifier:    f.events,
		Policy:      policy,
		Logger:      slog.Default(),
	})
	return f
}

func TestRecordOutcomeScenario(t *testing.T) {
	f := setup(t, ResubmitOverwrite)
	ctx := context.Background()

	if _, err := f.assignments.Put(ctx, wednesday, 1); err != nil {
		t.Fatalf("put assignment: %v", err)
	}
	if _, err := f.completions.CreateStaged(ctx, wednesday, 1, []int64{1, 2}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	id, err := f.tracker.RecordOutcome(ctx, Submission{
		Date:         wednesday,
		StudentID:    1,
		Completed:    []int64{1},
		NotCompleted: []int64{2},
		Comment:      "out of spray",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	rec, err := f.tracker.GetCompletion(ctx, wednesday)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != id || rec.Status() != model.StatusSubmitted {
		t.Fatalf("record = %+v, want submitted id %d", rec, id)
	}
	if !slices.Equal(rec.CompletedChoreIDs, []int64{1}) || !slices.Equal(rec.NonCompletedChoreIDs, []int64{2}) {
		t.Errorf("outcomes = %v / %v, want [1] / [2]", rec.CompletedChoreIDs, rec.NonCompletedChoreIDs)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.events.events))
	}
	p := f.events.events[0].Completion
	if p.CompletionID != id || p.Student.Name != "Ada" || p.AllDone() || p.Comment != "out of spray" {
		t.Errorf("payload = %+v", p)
	}
}

func TestRecordOutcomeDisjointAndCovering(t *testing.T) {
	f := setup(t, ResubmitOverwrite)
	ctx := context.Background()

	_, err := f.tracker.RecordOutcome(ctx, Submission{
		Date:         friday,
		StudentID:    2,
		Completed:    []int64{2, 2, 99},
		NotCompleted: []int64{2, 1},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	rec, _ := f.completions.Get(ctx, friday)
	for _, id := range rec.CompletedChoreIDs {
		if slices.Contains(rec.NonCompletedChoreIDs, id) {
			t.Errorf("chore %d in both lists", id)
		}
	}
	all := append(slices.Clone(rec.CompletedChoreIDs), rec.NonCompletedChoreIDs...)
	slices.Sort(all)
	if !slices.Equal(all, []int64{1, 2, 3}) {
		t.Errorf("union = %v, want friday chores [1 2 3]", all)
	}
	if !slices.Equal(rec.CompletedChoreIDs, []int64{2}) {
		t.Errorf("completed = %v, want [2]", rec.CompletedChoreIDs)
	}
}

func TestRecordOutcomeWithoutStaging(t *testing.T) {
	f := setup(t, ResubmitOverwrite)

	id, err := f.tracker.RecordOutcome(context.Background(), Submission{
		Date: wednesday, StudentID: 2, Completed: []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	rec, _ := f.completions.GetByID(context.Background(), id)
	if rec == nil || !rec.Submitted || rec.StudentID != 2 {
		t.Errorf("record = %+v, want submitted by 2", rec)
	}
	if !f.events.events[0].Completion.AllDone() {
		t.Error("payload should report all chores done")
	}
}

func TestRecordOutcomeResolvesAssignedStudent(t *testing.T) {
	f := setup(t, ResubmitOverwrite)
	ctx := context.Background()

	_, err := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday})
	if !errors.Is(err, ErrNoAssignment) {
		t.Fatalf("err = %v, want ErrNoAssignment", err)
	}

	f.assignments.Put(ctx, wednesday, 2)
	id, err := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	rec, _ := f.completions.GetByID(ctx, id)
	if rec.StudentID != 2 {
		t.Errorf("student = %d, want assigned student 2", rec.StudentID)
	}
}

func TestRecordOutcomeUnknownStudent(t *testing.T) {
	f := setup(t, ResubmitOverwrite)

	_, err := f.tracker.RecordOutcome(context.Background(), Submission{Date: wednesday, StudentID: 42})
	if !errors.Is(err, ErrUnknownStudent) {
		t.Fatalf("err = %v, want ErrUnknownStudent", err)
	}
	if len(f.events.events) != 0 {
		t.Error("no event expected for a failed submission")
	}
}

func TestResubmitOverwrite(t *testing.T) {
	f := setup(t, ResubmitOverwrite)
	ctx := context.Background()

	first, _ := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday, StudentID: 1})
	second, err := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday, StudentID: 1, Completed: []int64{1, 2}})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if first != second {
		t.Errorf("ids = %d, %d; want the same record", first, second)
	}
	rec, _ := f.completions.Get(ctx, wednesday)
	if len(rec.CompletedChoreIDs) != 2 {
		t.Errorf("completed = %v, want overwritten", rec.CompletedChoreIDs)
	}
}

func TestResubmitReject(t *testing.T) {
	f := setup(t, ResubmitReject)
	ctx := context.Background()

	if _, err := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday, StudentID: 1}); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday, StudentID: 1, Completed: []int64{1}})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
	rec, _ := f.completions.Get(ctx, wednesday)
	if len(rec.CompletedChoreIDs) != 0 {
		t.Errorf("completed = %v, want first submission kept", rec.CompletedChoreIDs)
	}
}

func TestMarkAttachment(t *testing.T) {
	f := setup(t, ResubmitOverwrite)
	ctx := context.Background()

	id, _ := f.tracker.RecordOutcome(ctx, Submission{Date: wednesday, StudentID: 1})
	if err := f.tracker.MarkAttachment(ctx, id, 2); err != nil {
		t.Fatalf("mark: %v", err)
	}
	rec, _ := f.completions.GetByID(ctx, id)
	if !rec.Attachments.Has(2) || rec.Attachments.Has(1) {
		t.Errorf("attachments = %v, want slot 2 only", rec.Attachments)
	}

	if err := f.tracker.MarkAttachment(ctx, id+100, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
	if err := f.tracker.MarkAttachment(ctx, id, 3); err == nil {
		t.Error("expected error for slot 3")
	}
}
