package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dukerupert/dutyroster/internal/email"
)

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// EmailSink mails every event to a fixed list of recipients.
type EmailSink struct {
	mailer   Mailer
	to       []string
	renderer Renderer
}

func NewEmailSink(mailer Mailer, to []string, renderer Renderer) *EmailSink {
	return &EmailSink{mailer: mailer, to: to, renderer: renderer}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, ev Event) error {
	r := s.renderer.Render(ev)
	return s.mailer.Send(ctx, email.Message{
		To:       s.to,
		Subject:  r.Title,
		TextBody: r.Text(),
		HTMLBody: renderHTML(r),
	})
}

func renderHTML(r Rendered) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<h2 style="border-left:6px solid %s;padding-left:8px">%s</h2>`, r.Color, html.EscapeString(r.Title))
	for _, f := range r.Fields {
		lines := strings.Split(f.Value, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		fmt.Fprintf(&b, `<p><strong>%s</strong><br>%s</p>`, html.EscapeString(f.Title), strings.Join(lines, "<br>"))
	}
	for _, l := range r.Links {
		u := html.EscapeString(l)
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, u, u)
	}
	return b.String()
}
