package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rallyledger/domain/events"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// subjectPrefix namespaces every ledger event on the bus
const subjectPrefix = "rally.credits"

// eventEnvelope wraps an event payload with delivery metadata
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher publishes ledger events to NATS JetStream. The
// fulfillment collaborator consumes RedemptionCommitted from here; the
// ledger treats delivery as fire-and-forget with at-least-once semantics.
type NATSEventPublisher struct {
	natsClient *NATSClient
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{natsClient: natsClient}
}

// Publish publishes an event to NATS, retrying transient failures with
// exponential backoff. A publish failure never propagates into ledger
// state; by the time events flow the transaction has committed.
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := eventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "rally-ledger",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := subjectForEvent(event)

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	publish := func() error {
		return p.natsClient.Publish(ctx, subject, envelopeData)
	}
	if err := backoff.Retry(publish, policy); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// subjectForEvent maps an event type to its bus subject, e.g.
// redemption_committed -> rally.credits.redemption.committed
func subjectForEvent(event events.Event) string {
	suffix := strings.ReplaceAll(string(event.Type()), "_", ".")
	return fmt.Sprintf("%s.%s", subjectPrefix, suffix)
}
