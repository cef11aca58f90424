package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// BookingRepo provides read access to booking documents.  Bookings are
// created and cancelled exclusively by the ledger; this repo only resolves
// and lists them.
type BookingRepo struct {
	store store.Store
}

// NewBookingRepo returns a BookingRepo bound to the given store.
func NewBookingRepo(s store.Store) *BookingRepo { return &BookingRepo{store: s} }

// Get loads one booking.
func (r *BookingRepo) Get(ctx context.Context, id string) (*model.Booking, error) {
	doc, err := r.store.Get(ctx, model.BookingsCollection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.BookingFromDoc(id, doc)
}

// ListByUser returns all bookings owned by uid, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, uid string) ([]*model.Booking, error) {
	docs, err := r.store.List(ctx, model.BookingsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Booking, 0)
	for _, d := range docs {
		b, err := model.BookingFromDoc(d.ID, d.Data)
		if err != nil {
			continue
		}
		if b.UserID == uid {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindConfirmedByEventAndUser resolves the user's confirmed booking for an
// event, used by cancellation addressed by event rather than booking ID.
// ErrNotFound is returned when no confirmed booking exists.
func (r *BookingRepo) FindConfirmedByEventAndUser(ctx context.Context, eventID, uid string) (*model.Booking, error) {
	docs, err := r.store.List(ctx, model.BookingsCollection)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		b, err := model.BookingFromDoc(d.ID, d.Data)
		if err != nil {
			continue
		}
		if b.EventID == eventID && b.UserID == uid && b.Status == model.BookingStatusConfirmed {
			return b, nil
		}
	}
	return nil, ErrNotFound
}
