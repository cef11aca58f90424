package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/ledger"
	"github.com/eventbook/eventbook/internal/middleware"
	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

type bookingFixture struct {
	store   *store.MemStore
	handler *BookingHandler
	echo    *echo.Echo
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	s := store.NewMemStore()
	l := ledger.New(s)
	return &bookingFixture{
		store:   s,
		handler: NewBookingHandler(l, repository.NewBookingRepo(s), repository.NewEventRepo(s), nil),
		echo:    echo.New(),
	}
}

func (f *bookingFixture) seedEvent(t *testing.T, capacity int, start time.Time) string {
	t.Helper()
	ev := &model.Event{
		Title:           "Beach Volleyball",
		Category:        model.CategorySports,
		Location:        "South Beach",
		Date:            start.UTC().Format("2006-01-02"),
		StartTime:       start.UTC().Format("15:04"),
		Status:          model.EventStatusUpcoming,
		MaxParticipants: capacity,
	}
	id, err := f.store.Add(context.Background(), model.EventsCollection, ev.Doc())
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return id
}

func (f *bookingFixture) request(t *testing.T, uid, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.Set(middleware.CtxUserID, uid)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateIndividualBooking(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 5, time.Now().UTC().Add(72*time.Hour))

	c, rec := f.request(t, "alice", http.MethodPost, "/api/bookings/individual",
		`{"eventId":"`+eventID+`"}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("CreateIndividual: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["seatsReserved"].(float64) != 1 {
		t.Fatalf("got seatsReserved=%v", body["seatsReserved"])
	}
	booking := body["booking"].(map[string]any)
	if booking["status"] != model.BookingStatusConfirmed {
		t.Fatalf("got booking %v", booking)
	}
	id, ok := body["bookingId"].(string)
	if !ok || id == "" {
		t.Fatalf("top-level bookingId missing from %v", body)
	}
	if id != booking["id"] {
		t.Fatalf("bookingId %q does not match booking.id %q", id, booking["id"])
	}
}

func TestCreateGroupBookingReturnsBookingID(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 5, time.Now().UTC().Add(72*time.Hour))

	c, rec := f.request(t, "alice", http.MethodPost, "/api/bookings/group",
		`{"eventId":"`+eventID+`","guestNames":["Bob"]}`)
	if err := f.handler.CreateGroup(c); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if id, ok := body["bookingId"].(string); !ok || id == "" {
		t.Fatalf("top-level bookingId missing from %v", body)
	}
	if body["seatsReserved"].(float64) != 2 {
		t.Fatalf("got seatsReserved=%v, want 2", body["seatsReserved"])
	}
}

func TestStorageContentionReportsServerError(t *testing.T) {
	f := newBookingFixture(t)

	c, rec := f.request(t, "alice", http.MethodPost, "/api/bookings/individual", "")
	if err := f.handler.reserveError(c, store.ErrTxExhausted); err != nil {
		t.Fatalf("reserveError: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("reserve contention: got %d, want 500", rec.Code)
	}

	c, rec = f.request(t, "alice", http.MethodDelete, "/api/bookings/b1", "")
	if err := f.handler.releaseError(c, store.ErrTxExhausted); err != nil {
		t.Fatalf("releaseError: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("release contention: got %d, want 500", rec.Code)
	}

	c, rec = f.request(t, "alice", http.MethodGet, "/api/bookings/my", "")
	if err := repoError(c, store.ErrTxExhausted, "booking not found"); err != nil {
		t.Fatalf("repoError: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("repo contention: got %d, want 500", rec.Code)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newBookingFixture(t)

	c, rec := f.request(t, "alice", http.MethodPost, "/api/bookings/individual", `{}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing eventId: got %d", rec.Code)
	}

	c, rec = f.request(t, "alice", http.MethodPost, "/api/bookings/individual",
		`{"eventId":"no-such-event"}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event: got %d", rec.Code)
	}
}

func TestCreateGroupBookingCapacityError(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 2, time.Now().UTC().Add(72*time.Hour))

	c, _ := f.request(t, "alice", http.MethodPost, "/api/bookings/individual",
		`{"eventId":"`+eventID+`"}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	c, rec := f.request(t, "bob", http.MethodPost, "/api/bookings/group",
		`{"eventId":"`+eventID+`","guestNames":["Guest One","Guest Two"]}`)
	if err := f.handler.CreateGroup(c); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["available"].(float64) != 1 {
		t.Fatalf("got available=%v, want 1", body["available"])
	}
}

func TestCancelBooking(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 5, time.Now().UTC().Add(72*time.Hour))

	c, rec := f.request(t, "alice", http.MethodPost, "/api/bookings/group",
		`{"eventId":"`+eventID+`","guestNames":["Bob"]}`)
	if err := f.handler.CreateGroup(c); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	bookingID := decodeBody(t, rec)["booking"].(map[string]any)["id"].(string)

	// someone else cannot cancel it
	c, rec = f.request(t, "mallory", http.MethodDelete, "/api/bookings/"+bookingID, "")
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign cancel: got %d", rec.Code)
	}

	c, rec = f.request(t, "alice", http.MethodDelete, "/api/bookings/"+bookingID, "")
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	if freed := decodeBody(t, rec)["seatsFreed"].(float64); freed != 2 {
		t.Fatalf("got seatsFreed=%v, want 2", freed)
	}
}

func TestCancelByEvent(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 5, time.Now().UTC().Add(72*time.Hour))

	c, _ := f.request(t, "alice", http.MethodPost, "/api/bookings/individual",
		`{"eventId":"`+eventID+`"}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	c, rec := f.request(t, "alice", http.MethodDelete, "/api/bookings/by-event/"+eventID, "")
	c.SetParamNames("eventId")
	c.SetParamValues(eventID)
	if err := f.handler.CancelByEvent(c); err != nil {
		t.Fatalf("CancelByEvent: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}

	// no confirmed booking remains for this event
	c, rec = f.request(t, "alice", http.MethodDelete, "/api/bookings/by-event/"+eventID, "")
	c.SetParamNames("eventId")
	c.SetParamValues(eventID)
	if err := f.handler.CancelByEvent(c); err != nil {
		t.Fatalf("CancelByEvent again: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestListMyBookings(t *testing.T) {
	f := newBookingFixture(t)
	eventID := f.seedEvent(t, 5, time.Now().UTC().Add(72*time.Hour))

	c, _ := f.request(t, "alice", http.MethodPost, "/api/bookings/individual",
		`{"eventId":"`+eventID+`"}`)
	if err := f.handler.CreateIndividual(c); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	c, rec := f.request(t, "alice", http.MethodGet, "/api/bookings/my", "")
	if err := f.handler.ListMine(c); err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	bookings := decodeBody(t, rec)["bookings"].([]any)
	if len(bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(bookings))
	}

	c, rec = f.request(t, "bob", http.MethodGet, "/api/bookings/my", "")
	if err := f.handler.ListMine(c); err != nil {
		t.Fatalf("ListMine bob: %v", err)
	}
	if bookings := decodeBody(t, rec)["bookings"].([]any); len(bookings) != 0 {
		t.Fatalf("bob sees foreign bookings: %v", bookings)
	}
}
