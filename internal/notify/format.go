package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

// Colors used by chat attachments.
const (
	ColorDaily   = "#3498db"
	ColorWeekly  = "#9b59b6"
	ColorAllDone = "#2ecc71"
	ColorMissed  = "#e74c3c"
)

// Field is a titled block of a rendered notification.
type Field struct {
	Title string
	Value string
	Short bool
}

// Rendered is a channel-neutral text rendering of an event.
type Rendered struct {
	Title  string
	Color  string
	Fields []Field
	Links  []string
}

// Text renders r as plain text.
func (r Rendered) Text() string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "\n%s:\n%s\n", f.Title, f.Value)
	}
	for _, l := range r.Links {
		fmt.Fprintf(&b, "\n%s", l)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Renderer turns events into text. BaseURL is the public address of the
// app and is used for image links.
type Renderer struct {
	BaseURL string
}

func (r Renderer) Render(ev Event) Rendered {
	switch ev.Kind {
	case KindDailyAssignment:
		if ev.Daily != nil {
			return r.daily(*ev.Daily)
		}
	case KindWeeklyAssignments:
		if ev.Weekly != nil {
			return r.weekly(*ev.Weekly)
		}
	case KindCompletionSubmitted:
		if ev.Completion != nil {
			return r.completion(*ev.Completion)
		}
	}
	return Rendered{Title: string(ev.Kind)}
}

func (r Renderer) daily(p DailyPayload) Rendered {
	return Rendered{
		Title: fmt.Sprintf("Duty today, %s", longDate(p.Date)),
		Color: ColorDaily,
		Fields: []Field{
			{Title: "Responsible", Value: studentLine(p.Student), Short: true},
			{Title: "Chores", Value: bulletList(p.Chores, "• ", "No chores registered.")},
		},
		Links: r.appLink(),
	}
}

func (r Renderer) weekly(p WeeklyPayload) Rendered {
	lines := make([]string, 0, len(p.Days))
	for _, d := range p.Days {
		who := "unassigned"
		if d.Student != nil {
			who = studentLine(*d.Student)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", d.Date.Weekday(), who))
	}
	return Rendered{
		Title:  fmt.Sprintf("Duty plan for week %d", p.Week),
		Color:  ColorWeekly,
		Fields: []Field{{Title: "Week of " + model.FormatDate(p.Monday), Value: strings.Join(lines, "\n")}},
		Links:  r.appLink(),
	}
}

func (r Renderer) completion(p CompletionPayload) Rendered {
	out := Rendered{
		Title: fmt.Sprintf("%s reported duty for %s", p.Student.Name, longDate(p.Date)),
		Color: ColorMissed,
	}
	if p.AllDone() {
		out.Color = ColorAllDone
	}
	out.Fields = []Field{
		{Title: "Student", Value: studentLine(p.Student), Short: true},
		{Title: "Done", Value: fmt.Sprintf("%d of %d", len(p.Completed), len(p.Completed)+len(p.NotCompleted)), Short: true},
		{Title: "Completed", Value: bulletList(p.Completed, "✓ ", "Nothing completed.")},
	}
	if len(p.NotCompleted) > 0 {
		out.Fields = append(out.Fields, Field{Title: "Not completed", Value: bulletList(p.NotCompleted, "✗ ", "")})
	}
	if c := strings.TrimSpace(p.Comment); c != "" {
		out.Fields = append(out.Fields, Field{Title: "Comment", Value: c})
	}
	for slot := 1; slot <= model.MaxAttachments; slot++ {
		if p.Attachments.Has(slot) {
			out.Links = append(out.Links, r.AttachmentURL(p.CompletionID, slot))
		}
	}
	return out
}

// AttachmentURL is the public address of an uploaded image.
func (r Renderer) AttachmentURL(completionID int64, slot int) string {
	return fmt.Sprintf("%s/api/completions/%d/attachments/%d", strings.TrimRight(r.BaseURL, "/"), completionID, slot)
}

func (r Renderer) appLink() []string {
	if r.BaseURL == "" {
		return nil
	}
	return []string{r.BaseURL}
}

func studentLine(s StudentRef) string {
	if s.Group == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Group)
}

func bulletList(chores []ChoreRef, bullet, empty string) string {
	if len(chores) == 0 {
		return empty
	}
	lines := make([]string, 0, len(chores))
	for _, c := range chores {
		lines = append(lines, bullet+c.Text)
	}
	return strings.Join(lines, "\n")
}

func longDate(t time.Time) string {
	return t.Format("Monday 2 January 2006")
}
