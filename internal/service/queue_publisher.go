// Package service publishes booking lifecycle events to RabbitMQ.  Errors
// are logged and returned so callers can ignore failures without
// interrupting the request flow; losing a notification never loses a seat.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/queue"
)

// QueuePublisher publishes booking events.  A fresh connection is dialed
// per publish; booking traffic is low enough that connection reuse is not
// worth a reconnect state machine on the hot path.
type QueuePublisher struct {
	url string
}

// NewQueuePublisher resolves the broker address from the environment.
func NewQueuePublisher() *QueuePublisher {
	return &QueuePublisher{url: queue.BrokerURL()}
}

// PublishBookingConfirmed announces a confirmed reservation on the
// booking.confirmed queue.
func (p *QueuePublisher) PublishBookingConfirmed(ctx context.Context, b *model.Booking, seats int) error {
	ev := queue.BookingConfirmedEvent{
		BookingID:     b.ID,
		EventID:       b.EventID,
		UserID:        b.UserID,
		Type:          b.Type,
		GuestNames:    b.GuestNames,
		SeatsReserved: seats,
		ConfirmedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
	return p.publish(ctx, queue.BookingConfirmedQueue, ev)
}

// PublishBookingCancelled announces a cancellation on the booking.cancelled
// queue.
func (p *QueuePublisher) PublishBookingCancelled(ctx context.Context, bookingID, userID string, seatsFreed int) error {
	ev := queue.BookingCancelledEvent{
		BookingID:   bookingID,
		UserID:      userID,
		SeatsFreed:  seatsFreed,
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	}
	return p.publish(ctx, queue.BookingCancelledQueue, ev)
}

func (p *QueuePublisher) publish(ctx context.Context, queueName string, payload any) error {
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

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
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
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
