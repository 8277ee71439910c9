package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/observability"
)

// Event subjects, relative to the configured prefix.
const (
	EventAssessmentCompleted = "assessment.completed"
	EventEvaluatorInvited    = "evaluator.invited"
	EventFeedbackUpdated     = "feedback.updated"
)

// EventPublisher hands a payload to the message broker. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

type domainEvent struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// EventBus publishes domain events for downstream collaborators (report generation, email
// delivery). Delivery failures are logged and never fail the originating request.
type EventBus struct {
	publisher EventPublisher
	prefix    string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventBus builds an event bus. A nil publisher turns it into a no-op.
func NewEventBus(publisher EventPublisher, prefix string, logger zerolog.Logger) *EventBus {
	return &EventBus{
		publisher: publisher,
		prefix:    strings.Trim(strings.TrimSpace(prefix), "."),
		logger:    logger.With().Str("component", "event_bus").Logger(),
		now:       time.Now,
	}
}

// Subject returns the fully-qualified subject for an event type.
func (b *EventBus) Subject(eventType string) string {
	if b == nil || b.prefix == "" {
		return eventType
	}
	return b.prefix + "." + eventType
}

// Publish serialises and sends an event.
func (b *EventBus) Publish(eventType string, payload interface{}) {
	if b == nil || b.publisher == nil {
		return
	}

	subject := b.Subject(eventType)
	data, err := json.Marshal(domainEvent{Type: eventType, OccurredAt: b.now().UTC(), Payload: payload})
	if err != nil {
		b.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		observability.DomainEventsPublished().WithLabelValues(eventType, "encode_error").Inc()
		return
	}

	if err := b.publisher.Publish(subject, data); err != nil {
		b.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
		observability.DomainEventsPublished().WithLabelValues(eventType, "error").Inc()
		return
	}

	observability.DomainEventsPublished().WithLabelValues(eventType, "ok").Inc()
}
