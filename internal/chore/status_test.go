package chore

import (
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

var (
	sweep = model.ChoreDefinition{ID: 1, Text: "Sweep the floor"}
	trash = model.ChoreDefinition{ID: 2, Text: "Take out the trash", Days: model.NewWeekdaySet(time.Friday)}

	thursday = time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	friday   = time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
)

func TestUnstagedDayIsPending(t *testing.T) {
	if s := ComputeStatus(sweep, nil, thursday, thursday); s != StatusPending {
		t.Errorf("status = %q, want %q", s, StatusPending)
	}
}

func TestStagedOutcomesStayPending(t *testing.T) {
	rec := &model.CompletionRecord{NonCompletedChoreIDs: []int64{1}}
	if s := ComputeStatus(sweep, rec, thursday, thursday); s != StatusPending {
		t.Errorf("status = %q, want %q", s, StatusPending)
	}
}

func TestPastUnsubmittedIsOverdue(t *testing.T) {
	rec := &model.CompletionRecord{NonCompletedChoreIDs: []int64{1}}
	if s := ComputeStatus(sweep, rec, thursday, friday); s != StatusOverdue {
		t.Errorf("status = %q, want %q", s, StatusOverdue)
	}
}

func TestSubmittedOutcomes(t *testing.T) {
	rec := &model.CompletionRecord{
		Submitted:            true,
		CompletedChoreIDs:    []int64{1},
		NonCompletedChoreIDs: []int64{2},
	}
	if s := ComputeStatus(sweep, rec, friday, friday); s != StatusCompleted {
		t.Errorf("sweep = %q, want %q", s, StatusCompleted)
	}
	if s := ComputeStatus(trash, rec, friday, friday); s != StatusNotCompleted {
		t.Errorf("trash = %q, want %q", s, StatusNotCompleted)
	}
}

func TestForDayFiltersByWeekday(t *testing.T) {
	defs := []model.ChoreDefinition{sweep, trash}

	if got := ForDay(defs, nil, thursday, thursday); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("thursday = %+v, want only sweep", got)
	}
	got := ForDay(defs, nil, friday, friday)
	if len(got) != 2 {
		t.Fatalf("friday len = %d, want 2", len(got))
	}
	if counts := Summary(got); counts[StatusPending] != 2 {
		t.Errorf("summary = %v, want 2 pending", counts)
	}
}
