package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// cancellationWindow is the period before event start during which
// cancellation is no longer allowed.
const cancellationWindow = 24 * time.Hour

// Ledger applies seat deltas and booking lifecycle transitions atomically
// against the document store.  All methods are safe for concurrent use:
// mutual exclusion comes entirely from the store's optimistic transactions,
// and every transaction body recomputes its decision from the freshly read
// event document, never from state captured on a previous attempt.
type Ledger struct {
	store store.Store
}

// New returns a Ledger bound to the given store.
func New(s store.Store) *Ledger { return &Ledger{store: s} }

// ReserveResult reports a successful reservation.
type ReserveResult struct {
	BookingID     string
	SeatsReserved int
	Booking       *model.Booking
	Event         *model.Event
}

// ReserveIndividual books one seat for the requester.  It is the degenerate
// group case with uidsToAdd = {requester} and no guest names, and fails
// with ErrAlreadyJoined when the requester already holds a seat.
func (l *Ledger) ReserveIndividual(ctx context.Context, eventID, requesterID string) (*ReserveResult, error) {
	return l.reserveSeats(ctx, eventID, requesterID, nil, model.BookingTypeIndividual)
}

// ReserveGroup books a seat for the requester plus one seat per new guest
// name.  Guest names are free text, not accounts; third parties are never
// represented as uids.
func (l *Ledger) ReserveGroup(ctx context.Context, eventID, requesterID string, guestNames []string) (*ReserveResult, error) {
	return l.reserveSeats(ctx, eventID, requesterID, guestNames, model.BookingTypeGroup)
}

// reserveSeats runs the reservation algorithm inside one store transaction.
// The body may execute several times when concurrent writers race on the
// event document; each attempt re-reads the event and re-derives
// availability, so at most one of N racing reservations can win the last
// seats.
func (l *Ledger) reserveSeats(ctx context.Context, eventID, requesterID string, guestNames []string, bookingType string) (*ReserveResult, error) {
	var result *ReserveResult
	err := l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		doc, err := tx.Get(model.EventsCollection, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		ev, err := model.EventFromDoc(eventID, doc)
		if err != nil {
			return err
		}
		if ev.Status == model.EventStatusCancelled || ev.Status == model.EventStatusCompleted {
			return ErrEventClosed
		}

		// Seat delta: the requester's own uid if not yet participating,
		// plus every normalized guest name not already reserved by this
		// requester.  Guest dedup is scoped per (event, addedBy); another
		// user's identically named guest does not collide.
		newUids := []string{}
		if !ev.HasParticipant(requesterID) {
			newUids = append(newUids, requesterID)
		}
		newNames := []string{}
		for _, name := range NormalizeGuestNames(guestNames) {
			if !ev.HasGuest(requesterID, name) {
				newNames = append(newNames, name)
			}
		}

		seatsNeeded := len(newUids) + len(newNames)
		if seatsNeeded == 0 {
			if len(guestNames) == 0 {
				return ErrAlreadyJoined
			}
			return ErrNoNewSeats
		}
		if seatsNeeded > ev.Available() {
			return &CapacityError{Available: ev.Available()}
		}

		now := time.Now().UTC()
		booking := &model.Booking{
			EventID:    eventID,
			UserID:     requesterID,
			Type:       bookingType,
			GuestNames: newNames,
			Status:     model.BookingStatusConfirmed,
			CreatedAt:  now,
		}
		booking.ID = tx.Create(model.BookingsCollection, booking.Doc())

		updates := []store.FieldUpdate{
			store.Increment("currentParticipants", int64(seatsNeeded)),
			store.Set("updatedAt", now.Format(time.RFC3339)),
		}
		if len(newUids) > 0 {
			updates = append(updates, store.ArrayUnion("participants", anySlice(newUids)...))
		}
		if len(newNames) > 0 {
			entries := make([]any, 0, len(newNames))
			for _, name := range newNames {
				entries = append(entries, model.GuestEntryDoc(model.GuestEntry{Name: name, AddedBy: requesterID}))
			}
			updates = append(updates, store.ArrayUnion("guestEntries", entries...))
		}
		tx.Update(model.EventsCollection, eventID, updates...)

		result = &ReserveResult{
			BookingID:     booking.ID,
			SeatsReserved: seatsNeeded,
			Booking:       booking,
			Event:         ev,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Release cancels a confirmed booking owned by requesterID and frees
// exactly the seats that booking reserved.  The 24-hour cutoff is checked
// against a pre-transaction read of the event; the start time is immutable
// after creation, so a stale read cannot change the decision.  The seat
// reversal itself re-reads everything inside the transaction.
func (l *Ledger) Release(ctx context.Context, bookingID, requesterID string) (int, error) {
	bdoc, err := l.store.Get(ctx, model.BookingsCollection, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrBookingNotFound
	}
	if err != nil {
		return 0, err
	}
	booking, err := model.BookingFromDoc(bookingID, bdoc)
	if err != nil {
		return 0, err
	}
	if booking.UserID != requesterID {
		return 0, ErrNotOwner
	}
	if booking.Status != model.BookingStatusConfirmed {
		return 0, ErrNotConfirmed
	}

	edoc, err := l.store.Get(ctx, model.EventsCollection, booking.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, err
	}
	ev, err := model.EventFromDoc(booking.EventID, edoc)
	if err != nil {
		return 0, err
	}
	start, err := ev.StartAt()
	if err != nil {
		return 0, err
	}
	if start.Sub(time.Now().UTC()) < cancellationWindow {
		return 0, ErrWindowClosed
	}

	seatsFreed := 0
	err = l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		bdoc, err := tx.Get(model.BookingsCollection, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		b, err := model.BookingFromDoc(bookingID, bdoc)
		if err != nil {
			return err
		}
		if b.Status != model.BookingStatusConfirmed {
			return ErrNotConfirmed
		}

		edoc, err := tx.Get(model.EventsCollection, b.EventID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		cur, err := model.EventFromDoc(b.EventID, edoc)
		if err != nil {
			return err
		}

		// dec is exactly what this booking reserved: the owner's seat if
		// still present plus this booking's guest entries.  Seats reserved
		// by the user's other bookings are untouched.
		dec := len(b.GuestNames)
		updates := []store.FieldUpdate{}
		if cur.HasParticipant(b.UserID) {
			dec++
			updates = append(updates, store.ArrayRemove("participants", b.UserID))
		}
		if len(b.GuestNames) > 0 {
			entries := make([]any, 0, len(b.GuestNames))
			for _, name := range b.GuestNames {
				entries = append(entries, model.GuestEntryDoc(model.GuestEntry{Name: name, AddedBy: b.UserID}))
			}
			updates = append(updates, store.ArrayRemove("guestEntries", entries...))
		}
		now := time.Now().UTC()
		updates = append(updates,
			store.Increment("currentParticipants", -int64(dec)),
			store.Set("updatedAt", now.Format(time.RFC3339)),
		)
		tx.Update(model.EventsCollection, b.EventID, updates...)
		tx.Update(model.BookingsCollection, bookingID,
			store.Set("status", model.BookingStatusCancelled),
			store.Set("cancelledAt", now.Format(time.RFC3339)),
		)
		seatsFreed = dec
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seatsFreed, nil
}

// UpdateCapacity changes maxParticipants transactionally, rejecting any
// value below the current participant count so capacity edits can never
// retroactively overbook.
func (l *Ledger) UpdateCapacity(ctx context.Context, eventID string, maxParticipants int) error {
	if maxParticipants <= 0 {
		return ErrCapacityBelowCurrent
	}
	return l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		doc, err := tx.Get(model.EventsCollection, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		ev, err := model.EventFromDoc(eventID, doc)
		if err != nil {
			return err
		}
		if maxParticipants < ev.CurrentParticipants {
			return ErrCapacityBelowCurrent
		}
		tx.Update(model.EventsCollection, eventID,
			store.Set("maxParticipants", maxParticipants),
			store.Set("updatedAt", time.Now().UTC().Format(time.RFC3339)),
		)
		return nil
	})
}

func anySlice(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
