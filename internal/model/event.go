package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// EventsCollection is the store collection holding event documents.
const EventsCollection = "events"

// Event categories accepted on creation.
const (
	CategorySports   = "sports"
	CategoryWorkshop = "workshop"
	CategorySocial   = "social"
)

// Event statuses.
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Timing buckets derived from the event date relative to now.
const (
	TimingToday    = "today"
	TimingTomorrow = "tomorrow"
	TimingThisWeek = "this-week"
	TimingUpcoming = "upcoming"
)

// GuestEntry is a named, non-account seat reservation scoped to the user
// who added it.  Two different users may each hold a guest seat under the
// same name; within one user's entries names are unique case-insensitively.
type GuestEntry struct {
	Name    string `json:"name"`
	AddedBy string `json:"addedBy"`
}

// Event is a bookable event document.  The seat fields
// (CurrentParticipants, Participants, GuestEntries) are owned by the
// capacity ledger and obey the invariant
// CurrentParticipants == len(Participants) + len(GuestEntries) <= MaxParticipants.
//
// Fields:
//  ID                  – document ID in the events collection.
//  Title, Description  – display copy.
//  Category            – sports | workshop | social.
//  Location            – free-text venue.
//  Date                – "YYYY-MM-DD".
//  StartTime, EndTime  – "HH:MM" (EndTime optional).
//  Status              – upcoming | completed | cancelled.
//  MaxParticipants     – capacity (positive).
//  CurrentParticipants – seats taken (uids + guest entries).
//  Participants        – set of uids holding a seat.
//  GuestEntries        – guest-name seat reservations.
//  ImageURL            – optional.
//  CreatedBy           – admin uid.
//  CreatedAt, UpdatedAt – timestamps.
type Event struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Category            string       `json:"category"`
	Location            string       `json:"location"`
	Date                string       `json:"date"`
	StartTime           string       `json:"time"`
	EndTime             string       `json:"endTime,omitempty"`
	Status              string       `json:"status"`
	MaxParticipants     int          `json:"maxParticipants"`
	CurrentParticipants int          `json:"currentParticipants"`
	Participants        []string     `json:"participants"`
	GuestEntries        []GuestEntry `json:"guestEntries"`
	ImageURL            string       `json:"imageUrl,omitempty"`
	CreatedBy           string       `json:"createdBy"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
	Timing              string       `json:"timing,omitempty"`
}

// ValidCategory reports whether c is one of the accepted event categories.
func ValidCategory(c string) bool {
	switch c {
	case CategorySports, CategoryWorkshop, CategorySocial:
		return true
	}
	return false
}

// EventFromDoc maps a stored document to an Event, validating the fields
// the booking core depends on.  It fails on malformed capacity or schedule
// data instead of propagating a document that could corrupt seat math.
func EventFromDoc(id string, d store.Doc) (*Event, error) {
	e := &Event{
		ID:                  id,
		Title:               asString(d["title"]),
		Description:         asString(d["description"]),
		Category:            asString(d["category"]),
		Location:            asString(d["location"]),
		Date:                asString(d["date"]),
		StartTime:           asString(d["time"]),
		EndTime:             asString(d["endTime"]),
		Status:              asString(d["status"]),
		MaxParticipants:     asInt(d["maxParticipants"]),
		CurrentParticipants: asInt(d["currentParticipants"]),
		Participants:        asStringSlice(d["participants"]),
		GuestEntries:        guestEntriesFromDoc(d["guestEntries"]),
		ImageURL:            asString(d["imageUrl"]),
		CreatedBy:           asString(d["createdBy"]),
		CreatedAt:           asTime(d["createdAt"]),
		UpdatedAt:           asTime(d["updatedAt"]),
	}
	if e.MaxParticipants <= 0 {
		return nil, fmt.Errorf("event %s: invalid maxParticipants %d", id, e.MaxParticipants)
	}
	if e.CurrentParticipants < 0 || e.CurrentParticipants > e.MaxParticipants {
		return nil, fmt.Errorf("event %s: currentParticipants %d out of range", id, e.CurrentParticipants)
	}
	if _, err := e.StartAt(); err != nil {
		return nil, err
	}
	return e, nil
}

// Doc maps the event back to its stored shape.  The ID is the document key
// and is not duplicated inside the data.
func (e *Event) Doc() store.Doc {
	return store.Doc{
		"title":               e.Title,
		"description":         e.Description,
		"category":            e.Category,
		"location":            e.Location,
		"date":                e.Date,
		"time":                e.StartTime,
		"endTime":             e.EndTime,
		"status":              e.Status,
		"maxParticipants":     e.MaxParticipants,
		"currentParticipants": e.CurrentParticipants,
		"participants":        stringsDoc(e.Participants),
		"guestEntries":        guestEntriesDoc(e.GuestEntries),
		"imageUrl":            e.ImageURL,
		"createdBy":           e.CreatedBy,
		"createdAt":           timeDoc(e.CreatedAt),
		"updatedAt":           timeDoc(e.UpdatedAt),
	}
}

// StartAt combines Date and StartTime into the event's start instant (UTC).
func (e *Event) StartAt() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", e.Date+" "+e.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s: invalid schedule %q %q", e.ID, e.Date, e.StartTime)
	}
	return t.UTC(), nil
}

// TimingBucket classifies the event date relative to now: today, tomorrow,
// within the coming week, or later.
func (e *Event) TimingBucket(now time.Time) string {
	start, err := e.StartAt()
	if err != nil {
		return TimingUpcoming
	}
	today := now.UTC().Truncate(24 * time.Hour)
	day := start.Truncate(24 * time.Hour)
	switch d := day.Sub(today) / (24 * time.Hour); {
	case d <= 0:
		return TimingToday
	case d == 1:
		return TimingTomorrow
	case d < 7:
		return TimingThisWeek
	default:
		return TimingUpcoming
	}
}

// HasParticipant reports whether uid already holds a seat.
func (e *Event) HasParticipant(uid string) bool {
	for _, p := range e.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// HasGuest reports whether addedBy already reserved a guest seat under the
// given name (case-insensitive).
func (e *Event) HasGuest(addedBy, name string) bool {
	for _, g := range e.GuestEntries {
		if g.AddedBy == addedBy && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

// Available returns the number of free seats.
func (e *Event) Available() int {
	return e.MaxParticipants - e.CurrentParticipants
}

// GuestEntryDoc is the stored shape of one guest entry.  The same shape
// must be used for array-union on reserve and array-remove on release so
// structural matching holds.
func GuestEntryDoc(g GuestEntry) store.Doc {
	return store.Doc{"name": g.Name, "addedBy": g.AddedBy}
}

func guestEntriesFromDoc(v any) []GuestEntry {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]GuestEntry, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		g := GuestEntry{Name: asString(m["name"]), AddedBy: asString(m["addedBy"])}
		if g.Name != "" && g.AddedBy != "" {
			out = append(out, g)
		}
	}
	return out
}

func guestEntriesDoc(entries []GuestEntry) []any {
	out := make([]any, 0, len(entries))
	for _, g := range entries {
		out = append(out, GuestEntryDoc(g))
	}
	return out
}

func stringsDoc(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
