// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into the booking audit log.
package queue

// Queue names used by the publisher and consumer.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a reservation is confirmed.  It
// carries enough for downstream consumers to log or notify without querying
// the primary store.
type BookingConfirmedEvent struct {
	BookingID     string   `json:"booking_id"`
	EventID       string   `json:"event_id"`
	UserID        string   `json:"user_id"`
	Type          string   `json:"type"`
	GuestNames    []string `json:"guest_names,omitempty"`
	SeatsReserved int      `json:"seats_reserved"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// seats return to the pool.
type BookingCancelledEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	SeatsFreed  int    `json:"seats_freed"`
	CancelledAt string `json:"cancelled_at"`
}
