// Package events publishes domain events after successful state changes.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	UserSignedUp   = "user.signed_up"
	OTPIssued      = "otp.issued"
	MobileVerified = "mobile.verified"
	ResumeSaved    = "resume.saved"
	ResumeDeleted  = "resume.deleted"
)

// Event is the envelope of every published message.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

// New stamps an event of the given type.
func New(eventType string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Broker is the subset of the RabbitMQ client used for publishing.
type Broker interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// BrokerPublisher publishes events to a message broker, routed by event type.
type BrokerPublisher struct {
	broker Broker
}

func NewBrokerPublisher(broker Broker) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}
	return p.broker.Publish(ctx, event.Type, body)
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	log.Info().Str("event", event.Type).Str("id", event.ID).Msg("event emitted")
	return nil
}

// PublishBestEffort publishes event and logs failures instead of returning them.
func PublishBestEffort(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Msg("failed to publish event")
	}
}
