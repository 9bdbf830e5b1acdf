package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event is the JSON envelope published to the message broker.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// EventPublisher emits domain events. Publishing is best effort: a broker
// failure is logged and never fails the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{})
}

type natsEventPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewNATSEventPublisher constructs a NATS-backed publisher. A nil connection
// disables publishing, which keeps local development broker-free.
func NewNATSEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	if subjectBase == "" {
		subjectBase = "lms"
	}

	return &natsEventPublisher{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "event_publisher").Logger(),
		now:         time.Now,
	}
}

func (p *natsEventPublisher) Publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if p.conn == nil {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to encode event")
		return
	}

	subject := p.subjectBase + "." + eventType
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
