// Package events delivers realtime notifications about ledger changes.
//
// Every event is addressed to a room: a group ID for changes members of that
// group should see, or a user ID for personal notifications.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Type names an event kind.
type Type string

const (
	GroupCreated    Type = "groupCreated"
	ExpenseAdded    Type = "expenseAdded"
	ExpenseUpdated  Type = "expenseUpdated"
	ExpenseDeleted  Type = "expenseDeleted"
	SettlementAdded Type = "settlementAdded"
	Notification    Type = "notification"
)

// Event is one realtime message.
type Event struct {
	Type      Type      `json:"type"`
	Room      string    `json:"room"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps an event with the current time.
func New(t Type, room string, payload any) Event {
	return Event{Type: t, Room: room, Payload: payload, Timestamp: time.Now().UTC()}
}

// Body encodes the event as JSON.
func (e Event) Body() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the structured log. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that logs at debug level.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.DebugContext(ctx, "Event", "type", e.Type, "room", e.Room)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
