package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventProposalSubmitted  = "proposal.submitted"
	EventOrderPaid          = "order.paid"
)

// Envelope is the wire form of every marketplace event. The partition key is
// the order id so one order's events stay ordered.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	OrderID      string          `json:"order_id"`
	Payload      json.RawMessage `json:"payload"`
}

// Publisher emits events after the state change they describe has committed.
// Publish must not block the request path.
type Publisher interface {
	Publish(ctx context.Context, eventType string, orderID int64, payload any)
}

// NewEnvelope builds a versioned envelope around payload.
func NewEnvelope(eventType string, orderID int64, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "descomplaca-api",
		OrderID:      strconv.FormatInt(orderID, 10),
		Payload:      raw,
	}, nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, int64, any) {}

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

func (r *Recorder) Publish(_ context.Context, eventType string, orderID int64, payload any) {
	env, err := NewEnvelope(eventType, orderID, payload)
	if err != nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, env)
	r.mu.Unlock()
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}
