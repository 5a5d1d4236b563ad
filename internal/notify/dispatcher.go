package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier accepts events without blocking the caller on delivery.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Sink delivers an event to one channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Dispatcher fans each event out to its sinks on background goroutines.
// Delivery failures are logged and never reach the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A zero timeout defaults to 10s.
func NewDispatcher(logger *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, logger: logger}
}

// Notify returns immediately. Delivery runs detached from ctx's
// cancellation so a finished request does not abort it.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	base := context.WithoutCancel(ctx)
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(sink Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			if err := sink.Deliver(ctx, ev); err != nil {
				d.logger.Warn("notification failed", "sink", sink.Name(), "kind", ev.Kind, "event_id", ev.ID, "error", err)
				return
			}
			d.logger.Debug("notification delivered", "sink", sink.Name(), "kind", ev.Kind, "event_id", ev.ID)
		}(sink)
	}
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
