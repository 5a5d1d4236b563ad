package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

func TestChoreListForWeekday(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	ctx := context.Background()

	seedChores(t, cs,
		model.ChoreDefinition{ID: 1, Text: "Start the dishwasher", Days: model.NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday), SortOrder: 0},
		model.ChoreDefinition{ID: 2, Text: "Wipe the counters", SortOrder: 1},
		model.ChoreDefinition{ID: 3, Text: "Take out the trash", Days: model.NewWeekdaySet(time.Friday), SortOrder: 2},
	)

	wed, err := cs.ListForWeekday(ctx, time.Wednesday)
	if err != nil {
		t.Fatalf("list wednesday: %v", err)
	}
	if len(wed) != 2 {
		t.Fatalf("wednesday: expected 2 chores, got %d", len(wed))
	}

	fri, err := cs.ListForWeekday(ctx, time.Friday)
	if err != nil {
		t.Fatalf("list friday: %v", err)
	}
	if len(fri) != 3 {
		t.Fatalf("friday: expected 3 chores, got %d", len(fri))
	}
	if fri[2].Text != "Take out the trash" {
		t.Errorf("fri[2] = %q, want trash", fri[2].Text)
	}

	sat, err := cs.ListForWeekday(ctx, time.Saturday)
	if err != nil {
		t.Fatalf("list saturday: %v", err)
	}
	if len(sat) != 0 {
		t.Errorf("saturday: expected no chores, got %d", len(sat))
	}
}

func TestChoreUpsertAndList(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	ctx := context.Background()

	seedChores(t, cs, model.ChoreDefinition{ID: 7, Text: "Tidy up", Days: model.NewWeekdaySet(time.Monday), SortOrder: 1})
	seedChores(t, cs, model.ChoreDefinition{ID: 7, Text: "Tidy the common area", Days: model.NewWeekdaySet(time.Tuesday), SortOrder: 1})
	seedChores(t, cs, model.ChoreDefinition{ID: 9, Text: "Water the plants", SortOrder: 0})

	all, err := cs.List(ctx)
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 chores, got %d", len(all))
	}
	if all[0].ID != 9 {
		t.Errorf("first chore = %d, want 9 by sort order", all[0].ID)
	}
	got := all[1]
	if got.Text != "Tidy the common area" {
		t.Errorf("text = %q", got.Text)
	}
	if !got.AppliesOn(time.Tuesday) || got.AppliesOn(time.Monday) {
		t.Errorf("days = %s, want tue", got.Days)
	}
}
