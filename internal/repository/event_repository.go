package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// EventRepo provides read access and admin-side writes for event documents.
// It never touches the seat fields; capacity changes go through the ledger.
type EventRepo struct {
	store store.Store
}

// NewEventRepo returns an EventRepo bound to the given store.
func NewEventRepo(s store.Store) *EventRepo { return &EventRepo{store: s} }

// Create inserts a new event document and returns its ID.  Seat fields
// start at zero/empty; the ledger owns them from here on.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) (string, error) {
	now := time.Now().UTC()
	ev.Status = model.EventStatusUpcoming
	ev.CurrentParticipants = 0
	ev.Participants = nil
	ev.GuestEntries = nil
	ev.CreatedAt = now
	ev.UpdatedAt = now
	id, err := r.store.Add(ctx, model.EventsCollection, ev.Doc())
	if err != nil {
		return "", err
	}
	ev.ID = id
	return id, nil
}

// Get loads one event.
func (r *EventRepo) Get(ctx context.Context, id string) (*model.Event, error) {
	doc, err := r.store.Get(ctx, model.EventsCollection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.EventFromDoc(id, doc)
}

// UpdateFields applies admin edits to non-seat fields inside a transaction,
// so a concurrent reservation can never be clobbered by a full-document
// write.  Capacity changes are rejected here; callers use the ledger's
// UpdateCapacity for those.
func (r *EventRepo) UpdateFields(ctx context.Context, id string, fields store.Doc) error {
	if _, ok := fields["maxParticipants"]; ok {
		return errors.New("maxParticipants must be updated through the capacity ledger")
	}
	for _, seatField := range []string{"currentParticipants", "participants", "guestEntries"} {
		if _, ok := fields[seatField]; ok {
			return errors.New("seat fields are owned by the capacity ledger")
		}
	}
	return r.store.RunTransaction(ctx, func(tx *store.Tx) error {
		if _, err := tx.Get(model.EventsCollection, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := make([]store.FieldUpdate, 0, len(fields)+1)
		for k, v := range fields {
			updates = append(updates, store.Set(k, v))
		}
		updates = append(updates, store.Set("updatedAt", time.Now().UTC().Format(time.RFC3339)))
		tx.Update(model.EventsCollection, id, updates...)
		return nil
	})
}

// Delete removes an event document.  Bookings referencing it survive as
// historical records; the ledger treats a missing event as not found.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, model.EventsCollection, id)
}

// EventFilter narrows and pages the event listing.
type EventFilter struct {
	Category string // sports | workshop | social
	Status   string // upcoming | completed | cancelled
	Timing   string // today | tomorrow | this-week | upcoming
	Search   string // case-insensitive substring of title/location
	Limit    int
	Offset   int
}

// List returns events matching the filter, soonest start first, together
// with the total match count before paging.  Filtering happens over the
// decoded documents; malformed documents are skipped rather than failing
// the whole listing.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]*model.Event, int, error) {
	docs, err := r.store.List(ctx, model.EventsCollection)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	matched := make([]*model.Event, 0, len(docs))
	for _, d := range docs {
		ev, err := model.EventFromDoc(d.ID, d.Data)
		if err != nil {
			continue
		}
		ev.Timing = ev.TimingBucket(now)
		if f.Category != "" && ev.Category != f.Category {
			continue
		}
		if f.Status != "" && ev.Status != f.Status {
			continue
		}
		if f.Timing != "" && ev.Timing != f.Timing {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(ev.Title), q) &&
				!strings.Contains(strings.ToLower(ev.Location), q) {
				continue
			}
		}
		matched = append(matched, ev)
	}
	sort.Slice(matched, func(i, j int) bool {
		si, _ := matched[i].StartAt()
		sj, _ := matched[j].StartAt()
		if si.Equal(sj) {
			return matched[i].ID < matched[j].ID
		}
		return si.Before(sj)
	})
	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= total {
			return []*model.Event{}, total, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}
