package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicUserRegistered     = "user.registered"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventUserRegistered     = "UserRegistered"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id or user id
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// PartitionKey keeps every event of one order (or user) on the same partition.
func (e Envelope) PartitionKey() []byte { return []byte(e.CorrelationID) }

func Decode[T any](e Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(e.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return t, nil
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	CompanyID string      `json:"companyId"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID   string `json:"orderId"`
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type UserRegisteredPayload struct {
	UserID     string `json:"userId"`
	ReferredBy string `json:"referredBy,omitempty"`
}

// Publisher is fire-and-forget: an error means the event was not queued.
type Publisher interface {
	Publish(ctx context.Context, topic string, env Envelope) error
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct{ Log *slog.Logger }

func (p LogPublisher) Publish(ctx context.Context, topic string, env Envelope) error {
	p.Log.InfoContext(ctx, "event",
		"topic", topic,
		"type", env.EventType,
		"event_id", env.EventID,
		"correlation_id", env.CorrelationID,
	)
	return nil
}

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Topic    string
	Envelope Envelope
}

func (r *Recorder) Publish(_ context.Context, topic string, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Topic: topic, Envelope: env})
	return nil
}

func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Topic)
	}
	return out
}

// Handler consumes one envelope.
type Handler func(ctx context.Context, env Envelope) error

// InProcess delivers envelopes to local subscribers before handing them to
// Next. It stands in for the broker when consumers run inside the publishing
// process. Subscriber errors are logged and never fail the publish.
type InProcess struct {
	Next Publisher
	Log  *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func (p *InProcess) Subscribe(topic string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers == nil {
		p.handlers = map[string][]Handler{}
	}
	p.handlers[topic] = append(p.handlers[topic], h)
}

func (p *InProcess) Publish(ctx context.Context, topic string, env Envelope) error {
	p.mu.RLock()
	hs := p.handlers[topic]
	p.mu.RUnlock()
	for _, h := range hs {
		if err := h(ctx, env); err != nil && p.Log != nil {
			p.Log.ErrorContext(ctx, "in-process handler failed",
				"topic", topic,
				"event_id", env.EventID,
				"err", err,
			)
		}
	}
	if p.Next == nil {
		return nil
	}
	return p.Next.Publish(ctx, topic, env)
}
