package events

import (
	"context"
	"sync"
)

// Recorder is an EventHandler that keeps every event it receives.
// It is safe for concurrent use and is mainly useful in tests and tools.
type Recorder struct {
	mu     sync.Mutex
	events []*StateChangeEvent
}

// HandleEvent implements EventHandler.
func (r *Recorder) HandleEvent(ctx context.Context, event *StateChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []*StateChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*StateChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every recorded event in arrival order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Count returns how many recorded events have the given type.
func (r *Recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Ensure Recorder implements EventHandler
var _ EventHandler = (*Recorder)(nil)
