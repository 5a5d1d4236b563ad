package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dutyroster.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	rule, _ := cfg.ScheduleRule()
	if g, ok := rule.GroupFor(time.Tuesday); !ok || g != model.GroupIT2 {
		t.Errorf("tuesday = %q, %v; want IT2", g, ok)
	}
	defs, _ := cfg.ChoreDefinitions()
	if len(defs) != 5 {
		t.Fatalf("chores = %d, want 5", len(defs))
	}
	if defs[3].AppliesOn(time.Thursday) || !defs[3].AppliesOn(time.Friday) {
		t.Errorf("trash chore days = %s, want friday only", defs[3].Days)
	}
	if !defs[2].AppliesOn(time.Monday) {
		t.Error("chore without days should apply every school day")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
timezone: UTC
rotation:
  tie_break: lowest_id
schedule:
  monday: im2
chores:
  - id: 10
    text: Water the plants
    days: [mon, wed]
students:
  - {id: 1, name: Ada, group: IM2}
  - {id: 2, name: Ben, group: im2}
  - {id: 3, name: Cleo, group: IT1}
notify:
  timeout: 3s
  webhooks:
    - url: https://discord.example.com/api/webhooks/1/abc/slack
      kinds: [daily_assignment_ready]
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Database.Path != "dutyroster.db" {
		t.Errorf("server/db = %q/%q", cfg.Server.Addr, cfg.Database.Path)
	}
	if cfg.Notify.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Notify.Timeout)
	}

	rule, _ := cfg.ScheduleRule()
	if _, ok := rule.GroupFor(time.Tuesday); ok {
		t.Error("schedule from file should replace the default table")
	}
	defs, _ := cfg.ChoreDefinitions()
	if len(defs) != 1 || defs[0].ID != 10 {
		t.Errorf("chores = %+v, want only the file's chore", defs)
	}

	students, _ := cfg.RosterSeed()
	if len(students) != 3 || students[1].Group != model.GroupIM2 || students[1].SortOrder != 1 || students[2].SortOrder != 0 {
		t.Errorf("students = %+v", students)
	}

	kinds, _ := cfg.Notify.Webhooks[0].EventKinds()
	if len(kinds) != 1 || kinds[0] != notify.KindDailyAssignment {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileBadYAML(t *testing.T) {
	if _, err := LoadFile(writeConfig(t, "server: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DUTYROSTER_ADDR":            ":7000",
		"DUTYROSTER_RESUBMIT_POLICY": "reject",
		"DUTYROSTER_WINDOW_DAYS":     "90",
		"DUTYROSTER_RUN_ON_START":    "true",
		"DUTYROSTER_EMAIL_TO":        "a@example.com, b@example.com",
		"DUTYROSTER_WEBHOOK_URL":     "https://hooks.example.com/x",
		"DUTYROSTER_JPEG_QUALITY":    "not a number",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Server.Addr != ":7000" || cfg.Completion.ResubmitPolicy != "reject" {
		t.Errorf("strings not applied: %+v %+v", cfg.Server, cfg.Completion)
	}
	if cfg.Rotation.WindowDays != 90 || !cfg.Cron.RunOnStart {
		t.Errorf("window = %d run_on_start = %v", cfg.Rotation.WindowDays, cfg.Cron.RunOnStart)
	}
	if cfg.Attachments.Quality != 35 {
		t.Errorf("quality = %d, want default kept for bad value", cfg.Attachments.Quality)
	}
	if len(cfg.Notify.Email.To) != 2 || cfg.Notify.Email.To[1] != "b@example.com" {
		t.Errorf("email to = %q", cfg.Notify.Email.To)
	}
	if len(cfg.Notify.Webhooks) != 1 {
		t.Errorf("webhooks = %+v", cfg.Notify.Webhooks)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Mars/Olympus"
	cfg.Rotation.TieBreak = "coin"
	cfg.Completion.ResubmitPolicy = "version"
	cfg.Schedule = map[string]string{"saturday": "IM1"}
	cfg.Cron.Daily = "whenever"
	cfg.Attachments.Quality = 0
	cfg.Students = []StudentConfig{{ID: 1, Name: "Ada", Group: "XX"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"timezone", "tie_break", "resubmit_policy", "school day", "cron.daily", "quality", "unknown group"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestChoreDefinitionsRejectDuplicates(t *testing.T) {
	cfg := Default()
	cfg.Chores = append(cfg.Chores, ChoreConfig{ID: 1, Text: "Again"})
	if _, err := cfg.ChoreDefinitions(); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestEmailEnabled(t *testing.T) {
	e := EmailConfig{PostmarkToken: "t", From: "duty@example.com"}
	if e.Enabled() {
		t.Error("email without recipients should be disabled")
	}
	e.To = []string{"teacher@example.com"}
	if !e.Enabled() {
		t.Error("complete email config should be enabled")
	}
}

func TestExampleFileLoads(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "dutyroster.example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if len(cfg.Notify.Webhooks) != 2 || cfg.Notify.Timeout != 10*time.Second {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	kinds, _ := cfg.Notify.Webhooks[1].EventKinds()
	if len(kinds) != 1 || kinds[0] != notify.KindCompletionSubmitted {
		t.Errorf("kinds = %v", kinds)
	}
	students, _ := cfg.RosterSeed()
	if len(students) != 6 || students[5].SortOrder != 1 {
		t.Errorf("students = %+v", students)
	}
}
