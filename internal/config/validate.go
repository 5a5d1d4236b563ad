package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/dutyroster/internal/completion"
	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
	"github.com/dukerupert/dutyroster/internal/rotation"
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	if c.Database.Path == "" {
		add("database.path is required")
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Rotation.WindowDays <= 0 {
		add("rotation.window_days must be positive, got %d", c.Rotation.WindowDays)
	}
	if _, err := rotation.ParseTieBreak(c.Rotation.TieBreak); err != nil {
		add("rotation.tie_break: %w", err)
	}
	if _, err := completion.ParseResubmitPolicy(c.Completion.ResubmitPolicy); err != nil {
		add("completion.resubmit_policy: %w", err)
	}
	if _, err := c.ScheduleRule(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ChoreDefinitions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RosterSeed(); err != nil {
		errs = append(errs, err)
	}
	if c.Cron.Enabled {
		for name, spec := range map[string]string{"cron.weekly": c.Cron.Weekly, "cron.daily": c.Cron.Daily} {
			if _, err := cron.ParseStandard(spec); err != nil {
				add("%s %q: %w", name, spec, err)
			}
		}
	}
	for i, w := range c.Notify.Webhooks {
		if w.URL == "" {
			add("notify.webhooks[%d].url is required", i)
		}
		if _, err := w.EventKinds(); err != nil {
			add("notify.webhooks[%d]: %w", i, err)
		}
	}
	if q := c.Attachments.Quality; q < 1 || q > 100 {
		add("attachments.quality must be 1-100, got %d", q)
	}
	if c.Attachments.MaxUploadBytes <= 0 {
		add("attachments.max_upload_bytes must be positive")
	}
	if c.Attachments.S3.Bucket == "" && c.Attachments.Dir == "" {
		add("attachments.dir or attachments.s3.bucket is required")
	}
	return errors.Join(errs...)
}

// Location returns the time zone that decides which calendar day it is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ScheduleRule converts the weekday to group table.
func (c *Config) ScheduleRule() (model.ScheduleRule, error) {
	m := make(map[time.Weekday]model.Group, len(c.Schedule))
	for day, group := range c.Schedule {
		d, err := model.ParseWeekday(day)
		if err != nil {
			return model.ScheduleRule{}, fmt.Errorf("schedule: %w", err)
		}
		if !model.IsSchoolDay(d) {
			return model.ScheduleRule{}, fmt.Errorf("schedule: %s is not a school day", d)
		}
		g, err := model.ParseGroup(group)
		if err != nil {
			return model.ScheduleRule{}, fmt.Errorf("schedule %s: %w", day, err)
		}
		m[d] = g
	}
	return model.NewScheduleRule(m), nil
}

// ChoreDefinitions converts the chore catalog, keeping file order as sort
// order.
func (c *Config) ChoreDefinitions() ([]model.ChoreDefinition, error) {
	seen := make(map[int64]bool, len(c.Chores))
	defs := make([]model.ChoreDefinition, 0, len(c.Chores))
	for i, ch := range c.Chores {
		if ch.ID <= 0 {
			return nil, fmt.Errorf("chores[%d]: id must be positive", i)
		}
		if seen[ch.ID] {
			return nil, fmt.Errorf("chores[%d]: duplicate id %d", i, ch.ID)
		}
		seen[ch.ID] = true
		if strings.TrimSpace(ch.Text) == "" {
			return nil, fmt.Errorf("chores[%d]: text is required", i)
		}
		days := make([]time.Weekday, 0, len(ch.Days))
		for _, s := range ch.Days {
			d, err := model.ParseWeekday(s)
			if err != nil {
				return nil, fmt.Errorf("chores[%d]: %w", i, err)
			}
			days = append(days, d)
		}
		defs = append(defs, model.ChoreDefinition{
			ID:        ch.ID,
			Text:      ch.Text,
			Days:      model.NewWeekdaySet(days...),
			SortOrder: i,
		})
	}
	return defs, nil
}

// RosterSeed converts the configured students. Order within a group
// follows the file.
func (c *Config) RosterSeed() ([]model.Student, error) {
	seen := make(map[int64]bool, len(c.Students))
	order := make(map[model.Group]int)
	out := make([]model.Student, 0, len(c.Students))
	for i, s := range c.Students {
		if s.ID <= 0 {
			return nil, fmt.Errorf("students[%d]: id must be positive", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("students[%d]: duplicate id %d", i, s.ID)
		}
		seen[s.ID] = true
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("students[%d]: name is required", i)
		}
		g, err := model.ParseGroup(s.Group)
		if err != nil {
			return nil, fmt.Errorf("students[%d]: %w", i, err)
		}
		out = append(out, model.Student{ID: s.ID, Name: s.Name, Group: g, SortOrder: order[g]})
		order[g]++
	}
	return out, nil
}

// EventKinds parses the webhook's kind filter.
func (w WebhookConfig) EventKinds() ([]notify.Kind, error) {
	kinds := make([]notify.Kind, 0, len(w.Kinds))
	for _, k := range w.Kinds {
		switch kind := notify.Kind(k); kind {
		case notify.KindDailyAssignment, notify.KindWeeklyAssignments, notify.KindCompletionSubmitted:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown event kind %q", k)
		}
	}
	return kinds, nil
}
