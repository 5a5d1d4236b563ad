package model

import (
	"testing"
	"time"
)

func TestWeekdaySetEmptyMeansEveryDay(t *testing.T) {
	var s WeekdaySet
	for d := time.Monday; d <= time.Friday; d++ {
		if !s.Has(d) {
			t.Errorf("empty set should cover %s", d)
		}
	}
	if s.Has(time.Saturday) || s.Has(time.Sunday) {
		t.Error("empty set should not cover weekends")
	}
}

func TestWeekdaySetSpecificDays(t *testing.T) {
	s := NewWeekdaySet(time.Friday, time.Sunday)
	if !s.Has(time.Friday) {
		t.Error("expected friday")
	}
	if s.Has(time.Monday) {
		t.Error("did not expect monday")
	}
	if got := s.String(); got != "fri" {
		t.Errorf("String() = %q, want %q", got, "fri")
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" Wednesday ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != time.Wednesday {
		t.Errorf("got %s, want Wednesday", d)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
}

func TestSchoolWeek(t *testing.T) {
	// Sunday Feb 8 2026 belongs to the ISO week starting Monday Feb 2.
	days := SchoolWeek(time.Date(2026, 2, 8, 15, 0, 0, 0, time.UTC))
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	if FormatDate(days[0]) != "2026-02-02" {
		t.Errorf("monday = %s, want 2026-02-02", FormatDate(days[0]))
	}
	if FormatDate(days[4]) != "2026-02-06" {
		t.Errorf("friday = %s, want 2026-02-06", FormatDate(days[4]))
	}
}

func TestDayKeepsCivilDate(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 00:30 in Oslo is still the previous day in UTC.
	local := time.Date(2026, 3, 4, 0, 30, 0, 0, oslo)
	if got := FormatDate(local); got != "2026-03-04" {
		t.Errorf("FormatDate = %q, want 2026-03-04", got)
	}
}

func TestDefaultScheduleRule(t *testing.T) {
	r := DefaultScheduleRule()
	if g, ok := r.GroupFor(time.Wednesday); !ok || g != GroupIM2 {
		t.Errorf("wednesday = %q, %v; want IM2", g, ok)
	}
	if _, ok := r.GroupFor(time.Saturday); ok {
		t.Error("saturday should have no duty")
	}
}

func TestCompletionStatus(t *testing.T) {
	var rec *CompletionRecord
	if rec.Status() != StatusUnstaged {
		t.Errorf("nil record status = %q", rec.Status())
	}
	rec = &CompletionRecord{}
	if rec.Status() != StatusStaged {
		t.Errorf("staged status = %q", rec.Status())
	}
	rec.Submitted = true
	if rec.Status() != StatusSubmitted {
		t.Errorf("submitted status = %q", rec.Status())
	}
}

func TestAttachmentFlags(t *testing.T) {
	f := AttachmentFlags{false, true}
	if !f.Has(2) || f.Has(1) {
		t.Errorf("flags = %v", f)
	}
	for _, slot := range []int{0, 3} {
		if ValidSlot(slot) || f.Has(slot) {
			t.Errorf("slot %d should be invalid", slot)
		}
	}
}
