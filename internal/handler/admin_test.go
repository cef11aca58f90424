package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/ledger"
	"github.com/eventbook/eventbook/internal/middleware"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

type adminFixture struct {
	store   *store.MemStore
	handler *AdminHandler
	booking *BookingHandler
	echo    *echo.Echo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	s := store.NewMemStore()
	l := ledger.New(s)
	events := repository.NewEventRepo(s)
	return &adminFixture{
		store:   s,
		handler: NewAdminHandler(events, l),
		booking: NewBookingHandler(l, repository.NewBookingRepo(s), events, nil),
		echo:    echo.New(),
	}
}

func (f *adminFixture) request(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "admin-1")
	return c, rec
}

func (f *adminFixture) createEvent(t *testing.T, capacity int) string {
	t.Helper()
	date := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")
	c, rec := f.request(t, http.MethodPost, "/api/admin/events",
		`{"title":"City Run","category":"sports","location":"Riverside","date":"`+date+
			`","time":"09:00","maxParticipants":`+strconv.Itoa(capacity)+`}`)
	if err := f.handler.CreateEvent(c); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["id"].(string)
}

func TestAdminCreateEventValidation(t *testing.T) {
	f := newAdminFixture(t)
	cases := []string{
		`{"category":"sports","location":"x","date":"2026-09-12","time":"09:00","maxParticipants":5}`,                  // no title
		`{"title":"Run","category":"knitting","location":"x","date":"2026-09-12","time":"09:00","maxParticipants":5}`,  // bad category
		`{"title":"Run","category":"sports","location":"x","date":"12.09.2026","time":"09:00","maxParticipants":5}`,    // bad date
		`{"title":"Run","category":"sports","location":"x","date":"2026-09-12","time":"9am","maxParticipants":5}`,      // bad time
		`{"title":"Run","category":"sports","location":"x","date":"2026-09-12","time":"09:00","maxParticipants":0}`,    // zero capacity
		`{"title":"Run","category":"sports","location":"","date":"2026-09-12","time":"09:00","maxParticipants":5}`,     // no location
	}
	for i, body := range cases {
		c, rec := f.request(t, http.MethodPost, "/api/admin/events", body)
		if err := f.handler.CreateEvent(c); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: got %d, want 400", i, rec.Code)
		}
	}
}

func TestAdminUpdateEventCapacityFloor(t *testing.T) {
	f := newAdminFixture(t)
	eventID := f.createEvent(t, 5)

	// take two seats
	c, rec := f.request(t, http.MethodPost, "/api/bookings/group",
		`{"eventId":"`+eventID+`","guestNames":["Bob"]}`)
	c.Set(middleware.CtxUserID, "alice")
	if err := f.booking.CreateGroup(c); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: got %d, body %s", rec.Code, rec.Body.String())
	}

	c, rec = f.request(t, http.MethodPut, "/api/admin/events/"+eventID, `{"maxParticipants":1}`)
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	if err := f.handler.UpdateEvent(c); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("capacity below current: got %d, body %s", rec.Code, rec.Body.String())
	}

	c, rec = f.request(t, http.MethodPut, "/api/admin/events/"+eventID,
		`{"maxParticipants":8,"title":"Night Run"}`)
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	if err := f.handler.UpdateEvent(c); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["maxParticipants"].(float64) != 8 || body["title"] != "Night Run" {
		t.Fatalf("update not applied: %v", body)
	}
}

func TestAdminUpdateEventRejectsUnknownAndSeatFields(t *testing.T) {
	f := newAdminFixture(t)
	eventID := f.createEvent(t, 5)

	for _, body := range []string{
		`{"currentParticipants":0}`,
		`{"participants":[]}`,
		`{"bogus":"x"}`,
	} {
		c, rec := f.request(t, http.MethodPut, "/api/admin/events/"+eventID, body)
		c.SetParamNames("id")
		c.SetParamValues(eventID)
		if err := f.handler.UpdateEvent(c); err != nil {
			t.Fatalf("UpdateEvent: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: got %d, want 400", body, rec.Code)
		}
	}
}

func TestAdminDeleteEvent(t *testing.T) {
	f := newAdminFixture(t)
	eventID := f.createEvent(t, 5)

	c, rec := f.request(t, http.MethodDelete, "/api/admin/events/"+eventID, "")
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	if err := f.handler.DeleteEvent(c); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	c, rec = f.request(t, http.MethodDelete, "/api/admin/events/"+eventID, "")
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	if err := f.handler.DeleteEvent(c); err != nil {
		t.Fatalf("DeleteEvent again: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}
