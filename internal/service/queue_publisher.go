// Package service contains the RabbitMQ publisher for reservation
// events.  Publishing is best-effort: errors are logged and returned
// so callers can ignore them without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/huuhung7301/hubo-event/internal/queue"
)

// ReservationQueueName is the durable queue reservation submissions
// are published to and consumed from.
const ReservationQueueName = "reservation.submitted"

// QueuePublisher publishes reservation events to RabbitMQ.  A fresh
// connection is dialed per publish; submission volume is low enough
// that connection pooling is not worth the bookkeeping.
type QueuePublisher struct {
	url string
}

// NewQueuePublisher returns a publisher targeting the broker at url.
func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{url: url}
}

// PublishReservationSubmitted marshals the event and publishes it to
// the reservation.submitted queue.  Messages are persistent so they
// survive broker restarts.
func (p *QueuePublisher) PublishReservationSubmitted(ctx context.Context, event queue.ReservationSubmittedEvent) error {
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

	// Declare is idempotent; durable so messages survive restarts.
	if _, err := ch.QueueDeclare(ReservationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
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
	if err := ch.PublishWithContext(ctx, "", ReservationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
