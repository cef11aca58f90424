// Package ledger implements the capacity ledger and the booking lifecycle:
// every mutation of an event's seat state (currentParticipants,
// participants, guestEntries) goes through this package's transactional
// operations, which enforce the capacity invariant and create or cancel the
// matching booking document in the same atomic unit.
package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors distinguishing the failure modes of reserve and release.
// Handlers translate these into HTTP statuses: not-found errors to 404,
// ownership to 403, business-rule violations to 400.
var (
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrBookingNotFound is returned when the referenced booking does not
	// exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNotOwner is returned when a caller tries to release a booking
	// owned by someone else.
	ErrNotOwner = errors.New("booking belongs to another user")
	// ErrAlreadyJoined is returned when a uids-only reservation finds every
	// requested uid already holding a seat.
	ErrAlreadyJoined = errors.New("already joined this event")
	// ErrNoNewSeats is returned when a reservation would add no seats of
	// any kind (uids and guest names all already reserved).
	ErrNoNewSeats = errors.New("no new seats to reserve")
	// ErrNotConfirmed is returned when releasing a booking that is not in
	// the confirmed state; re-cancellation is rejected, not a silent no-op.
	ErrNotConfirmed = errors.New("booking is not confirmed")
	// ErrWindowClosed is returned when cancellation is attempted within 24
	// hours of the event start.
	ErrWindowClosed = errors.New("cancellation window closed")
	// ErrEventClosed is returned when reserving seats on a cancelled or
	// completed event.
	ErrEventClosed = errors.New("event is not open for booking")
	// ErrCapacityBelowCurrent is returned when an admin tries to lower
	// maxParticipants below the seats already taken.
	ErrCapacityBelowCurrent = errors.New("maxParticipants below current participants")
	// ErrCapacityExceeded is the target for errors.Is on CapacityError.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// CapacityError reports a reservation that would overbook the event,
// carrying the number of seats still available so callers can surface it.
type CapacityError struct {
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d seats available", e.Available)
}

// Is makes errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }
