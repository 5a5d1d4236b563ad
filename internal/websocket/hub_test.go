package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
	hub.Unregister(c2)
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	sent, err := hub.Broadcast(Message{Type: "completion_submitted", Date: "2026-02-04", Data: map[string]any{"completion_id": 7}})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "completion_submitted" || got.Date != "2026-02-04" {
				t.Errorf("got %+v", got)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(Message{Type: "fill"})
	}
	sent, _ := hub.Broadcast(Message{Type: "dropped"})
	if sent != 0 {
		t.Errorf("sent = %d, want 0 for a full buffer", sent)
	}
	if hub.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", hub.Dropped())
	}
	if len(c.send) != sendBufferSize {
		t.Errorf("buffered = %d, want %d", len(c.send), sendBufferSize)
	}
}

func TestBroadcastUnmarshalable(t *testing.T) {
	hub := NewHub(slog.Default())
	if _, err := hub.Broadcast(Message{Type: "bad", Data: make(chan int)}); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(Message{Type: "concurrent"})
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandlerDeliversBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := httptest.NewServer(Handler(hub, slog.Default(), nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.ClientCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	hub.Broadcast(Message{Type: "daily_assignment_ready", Date: "2026-02-04"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "daily_assignment_ready" {
		t.Errorf("type = %q", got.Type)
	}
}
