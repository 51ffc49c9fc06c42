package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

// Event types carried in the envelope.
const (
	EventTicketIssued   = "ticket_issued"
	EventTicketRedeemed = "ticket_redeemed"
	EventDrawConducted  = "draw_conducted"
)

// Event is the envelope written to every topic.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func newEvent(kind string, payload interface{}, at time.Time) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      kind,
		Payload:   data,
		Timestamp: at,
	}, nil
}

// Topics names the destination of each event type.
type Topics struct {
	TicketIssued   string
	TicketRedeemed string
	DrawConducted  string
}

var _ providers.EventPublisher = (*Publisher)(nil)

// Publisher streams ledger events to Kafka. Ticket events go through the
// async worker pool; draw events are written synchronously.
type Publisher struct {
	producer *Producer
	topics   Topics
}

// NewPublisher wraps a producer.
func NewPublisher(producer *Producer, topics Topics) *Publisher {
	return &Publisher{producer: producer, topics: topics}
}

func (p *Publisher) PublishTicketIssued(ctx context.Context, ev *providers.TicketIssuedEvent) error {
	env, err := newEvent(EventTicketIssued, ev, ev.Timestamp)
	if err != nil {
		return err
	}
	return p.producer.SendMessage(ctx, p.topics.TicketIssued, strconv.Itoa(ev.Office), env)
}

func (p *Publisher) PublishTicketRedeemed(ctx context.Context, ev *providers.TicketRedeemedEvent) error {
	env, err := newEvent(EventTicketRedeemed, ev, ev.Timestamp)
	if err != nil {
		return err
	}
	return p.producer.SendMessage(ctx, p.topics.TicketRedeemed, strconv.Itoa(ev.Office), env)
}

func (p *Publisher) PublishDrawConducted(ctx context.Context, ev *providers.DrawConductedEvent) error {
	env, err := newEvent(EventDrawConducted, ev, ev.Timestamp)
	if err != nil {
		return err
	}
	return p.producer.SendMessageSync(ctx, p.topics.DrawConducted, strconv.Itoa(ev.Number), env)
}
