package testutil

import (
	"context"
	"sync"

	"github.com/iliyamo/campus-ticketing/internal/queue"
)

// Recorder captures published ticket events.  Set Err to make every
// Publish fail.
type Recorder struct {
	mu     sync.Mutex
	events []queue.TicketEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev queue.TicketEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []queue.TicketEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.TicketEvent(nil), r.events...)
}
