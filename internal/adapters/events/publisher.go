// Package events publishes lifecycle events to RabbitMQ so downstream queues
// (approval desk, disbursement desk, notification workers) can react without
// polling the primary database.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// QueueApplicationEvents carries application lifecycle transitions
	QueueApplicationEvents = "plafond.application.events"
	// QueueDisbursementEvents carries disbursement lifecycle transitions
	QueueDisbursementEvents = "plafond.disbursement.events"
)

// ApplicationEvent is published on every application status transition
type ApplicationEvent struct {
	ApplicationID uint    `json:"application_id"`
	NewStatus     string  `json:"new_status"`
	ActorID       uint    `json:"actor_id"`
	ActorUsername string  `json:"actor_username"`
	ActorRole     string  `json:"actor_role"`
	Note          string  `json:"note,omitempty"`
	ApprovedLimit float64 `json:"approved_limit,omitempty"`
	OccurredAt    string  `json:"occurred_at"`
}

// DisbursementEvent is published on every disbursement status transition
type DisbursementEvent struct {
	DisbursementID uint    `json:"disbursement_id"`
	ApplicationID  uint    `json:"application_id"`
	NewStatus      string  `json:"new_status"`
	Amount         float64 `json:"amount"`
	ActorID        uint    `json:"actor_id"`
	ActorUsername  string  `json:"actor_username"`
	Note           string  `json:"note,omitempty"`
	OccurredAt     string  `json:"occurred_at"`
}

// Publisher publishes lifecycle events. A nil Publisher is a valid no-op, so
// callers never need to guard against a missing broker.
type Publisher struct {
	url string
}

// NewPublisher creates a publisher for the given broker URL. The connection
// is dialed per publish; lifecycle transitions are low-volume enough that a
// persistent channel is not worth the reconnect bookkeeping.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishApplicationEvent publishes an application transition. Errors are
// logged and returned; callers ignore them because the transition itself has
// already been committed.
func (p *Publisher) PublishApplicationEvent(ctx context.Context, event ApplicationEvent) error {
	if p == nil {
		return nil
	}
	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	return p.publish(ctx, QueueApplicationEvents, event)
}

// PublishDisbursementEvent publishes a disbursement transition
func (p *Publisher) PublishDisbursementEvent(ctx context.Context, event DisbursementEvent) error {
	if p == nil {
		return nil
	}
	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	return p.publish(ctx, QueueDisbursementEvents, event)
}

func (p *Publisher) publish(ctx context.Context, queue string, payload interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
