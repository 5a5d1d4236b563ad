package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/staging"
)

type fakeStager struct {
	mu     sync.Mutex
	weeks  []time.Time
	days   []time.Time
	dayErr error
}

func (f *fakeStager) StageWeek(_ context.Context, ref time.Time) (staging.WeekResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weeks = append(f.weeks, ref)
	return staging.WeekResult{}, nil
}

func (f *fakeStager) StageDay(_ context.Context, date time.Time) (staging.DayResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, date)
	return staging.DayResult{Date: date, Outcome: staging.DayStaged}, f.dayErr
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New(&fakeStager{}, Config{DailySpec: "every morning"}, slog.Default()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRunUsesLocalDay(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	f := &fakeStager{}
	s, err := New(f, Config{Location: oslo}, slog.Default())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// 23:30 UTC on Tuesday is already Wednesday in Oslo.
	s.now = func() time.Time { return time.Date(2026, 2, 3, 23, 30, 0, 0, time.UTC) }

	if _, err := s.RunDaily(context.Background()); err != nil {
		t.Fatalf("run daily: %v", err)
	}
	want := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	if len(f.days) != 1 || !f.days[0].Equal(want) {
		t.Errorf("days = %v, want [%v]", f.days, want)
	}
}

func TestRunDailyReportsError(t *testing.T) {
	f := &fakeStager{dayErr: staging.ErrMissingAssignment}
	s, _ := New(f, Config{}, slog.Default())

	if _, err := s.RunDaily(context.Background()); !errors.Is(err, staging.ErrMissingAssignment) {
		t.Errorf("err = %v, want ErrMissingAssignment", err)
	}
}

func TestStartRunsOnStart(t *testing.T) {
	f := &fakeStager{}
	s, err := New(f, Config{RunOnStart: true}, slog.Default())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start(context.Background())
	s.Stop()

	if len(f.weeks) != 1 || len(f.days) != 1 {
		t.Errorf("weeks = %d days = %d, want 1 each", len(f.weeks), len(f.days))
	}
}

func TestStartWithoutRunOnStart(t *testing.T) {
	f := &fakeStager{}
	s, _ := New(f, Config{}, slog.Default())
	s.Start(context.Background())
	s.Stop()

	if len(f.weeks) != 0 || len(f.days) != 0 {
		t.Errorf("jobs ran without a tick: weeks = %d days = %d", len(f.weeks), len(f.days))
	}
}
