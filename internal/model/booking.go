package model

import (
	"fmt"
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// BookingsCollection is the store collection holding booking documents.
const BookingsCollection = "bookings"

// Booking types.
const (
	BookingTypeIndividual = "individual"
	BookingTypeGroup      = "group"
)

// Booking statuses.  The lifecycle is confirmed -> cancelled; cancelled is
// terminal and there are no other transitions.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking records one seat reservation against an event.  It is created
// atomically with its seats and is the unit of cancellation: releasing it
// reverses exactly the seats it reserved.
//
// Fields:
//  ID          – document ID in the bookings collection.
//  EventID     – the event whose seats are held.
//  UserID      – the initiating (owning) user.
//  Type        – individual | group.
//  GuestNames  – free-text guest names this booking reserved (group only).
//  Status      – confirmed | cancelled.
//  CreatedAt   – creation timestamp.
//  CancelledAt – set only on cancellation.
type Booking struct {
	ID          string    `json:"id"`
	EventID     string    `json:"eventId"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	GuestNames  []string  `json:"guestNames,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	CancelledAt time.Time `json:"cancelledAt,omitempty"`
}

// BookingFromDoc maps a stored document to a Booking, validating the
// fields cancellation depends on.
func BookingFromDoc(id string, d store.Doc) (*Booking, error) {
	b := &Booking{
		ID:          id,
		EventID:     asString(d["eventId"]),
		UserID:      asString(d["userId"]),
		Type:        asString(d["type"]),
		GuestNames:  asStringSlice(d["guestNames"]),
		Status:      asString(d["status"]),
		CreatedAt:   asTime(d["createdAt"]),
		CancelledAt: asTime(d["cancelledAt"]),
	}
	if b.EventID == "" || b.UserID == "" {
		return nil, fmt.Errorf("booking %s: missing eventId or userId", id)
	}
	if b.Status != BookingStatusConfirmed && b.Status != BookingStatusCancelled {
		return nil, fmt.Errorf("booking %s: invalid status %q", id, b.Status)
	}
	return b, nil
}

// Doc maps the booking back to its stored shape.
func (b *Booking) Doc() store.Doc {
	return store.Doc{
		"eventId":     b.EventID,
		"userId":      b.UserID,
		"type":        b.Type,
		"guestNames":  stringsDoc(b.GuestNames),
		"status":      b.Status,
		"createdAt":   timeDoc(b.CreatedAt),
		"cancelledAt": timeDoc(b.CancelledAt),
	}
}
