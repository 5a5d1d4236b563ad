package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/slack-go/slack"
)

// WebhookSink posts events to a Slack-compatible incoming webhook. Discord
// accepts the same payload on its "/slack" webhook path.
type WebhookSink struct {
	url      string
	username string
	kinds    []Kind
	renderer Renderer
	client   *http.Client
}

type WebhookOption func(*WebhookSink)

// WithKinds limits the sink to the given event kinds.
func WithKinds(kinds ...Kind) WebhookOption {
	return func(s *WebhookSink) {
		s.kinds = kinds
	}
}

func WithUsername(name string) WebhookOption {
	return func(s *WebhookSink) {
		s.username = name
	}
}

func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(s *WebhookSink) {
		s.client = c
	}
}

func NewWebhookSink(url string, renderer Renderer, opts ...WebhookOption) *WebhookSink {
	s := &WebhookSink{url: url, renderer: renderer, client: http.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, ev Event) error {
	if len(s.kinds) > 0 && !slices.Contains(s.kinds, ev.Kind) {
		return nil
	}
	return slack.PostWebhookCustomHTTPContext(ctx, s.url, s.client, s.message(ev))
}

func (s *WebhookSink) message(ev Event) *slack.WebhookMessage {
	r := s.renderer.Render(ev)
	att := slack.Attachment{
		Color:    r.Color,
		Title:    r.Title,
		Fallback: r.Title,
		Footer:   "Duty roster",
		Ts:       json.Number(strconv.FormatInt(ev.OccurredAt.Unix(), 10)),
	}
	for _, f := range r.Fields {
		att.Fields = append(att.Fields, slack.AttachmentField{Title: f.Title, Value: f.Value, Short: f.Short})
	}
	if len(r.Links) > 0 {
		att.TitleLink = r.Links[0]
	}
	if ev.Completion != nil {
		for _, l := range r.Links {
			att.Text += l + "\n"
		}
		if len(r.Links) > 0 {
			att.ImageURL = r.Links[0]
		}
	}
	return &slack.WebhookMessage{
		Username:    s.username,
		Text:        r.Title,
		Attachments: []slack.Attachment{att},
	}
}
