package chain

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one emitted state-transition record (spec.md §6 "Event stream").
// Fields carries the full new-state summary for the primary event of a
// mutation, e.g. {"nft_id": 1, "new_owner": "dave", ...}. TraceID lets a
// host correlate an event back to the extrinsic that produced it across
// logs and any downstream bus it forwards the drained batch to.
type Event struct {
	Pallet  string
	Name    string
	Fields  map[string]any
	TraceID string
}

// NewEvent is a small constructor used throughout the pallet packages to
// keep event construction call sites terse.
func NewEvent(pallet, name string, fields map[string]any) Event {
	return Event{Pallet: pallet, Name: name, Fields: fields, TraceID: uuid.NewString()}
}

// EventSink collects events emitted during block execution, preserving
// extrinsic order (spec.md §6: "Event ordering within a block matches
// extrinsic ordering"). Grounded on platform/os.EventBus's pub/sub shape,
// simplified to an ordered append-only log since the CORE has no external
// subscriber fan-out of its own — the host runtime drains Events() once per
// block and forwards them to its own bus.
type EventSink struct {
	mu     sync.Mutex
	events []Event
}

// NewEventSink creates an empty sink.
func NewEventSink() *EventSink {
	return &EventSink{}
}

// Emit appends an event, preserving call order.
func (s *EventSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Drain returns all events recorded since the last Drain and clears the log.
// Called once per block by the host after on_initialize and all extrinsics
// have run.
func (s *EventSink) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}
