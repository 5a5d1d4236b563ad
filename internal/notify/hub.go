package notify

import (
	"context"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/websocket"
)

// Broadcaster pushes a message to live clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message) (int, error)
}

// HubSink forwards events to connected browsers so open pages refresh.
type HubSink struct {
	hub Broadcaster
}

func NewHubSink(hub Broadcaster) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Name() string { return "websocket" }

func (s *HubSink) Deliver(_ context.Context, ev Event) error {
	msg := websocket.Message{Type: string(ev.Kind), ID: ev.ID.String()}
	var date time.Time
	switch {
	case ev.Daily != nil:
		date, msg.Data = ev.Daily.Date, ev.Daily
	case ev.Weekly != nil:
		date, msg.Data = ev.Weekly.Monday, ev.Weekly
	case ev.Completion != nil:
		date, msg.Data = ev.Completion.Date, ev.Completion
	}
	if !date.IsZero() {
		msg.Date = model.FormatDate(date)
	}
	_, err := s.hub.Broadcast(msg)
	return err
}
