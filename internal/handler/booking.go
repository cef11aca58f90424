package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/ledger"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/service"
	"github.com/eventbook/eventbook/internal/store"
)

// BookingHandler exposes the booking lifecycle: individual and group
// reservations, listing a user's bookings, and cancellation by booking ID
// or by event.  All seat math happens in the ledger; the handler only
// binds input and translates errors.
type BookingHandler struct {
	Ledger    *ledger.Ledger
	Bookings  *repository.BookingRepo
	Events    *repository.EventRepo
	Publisher *service.QueuePublisher // optional, nil disables notifications
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(l *ledger.Ledger, bookings *repository.BookingRepo, events *repository.EventRepo, pub *service.QueuePublisher) *BookingHandler {
	if l == nil || bookings == nil || events == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Bookings: bookings, Events: events, Publisher: pub}
}

// CreateIndividual handles POST /api/bookings/individual.  Body:
// {"eventId": "..."}.  Reserves exactly one seat for the caller.
func (h *BookingHandler) CreateIndividual(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		EventID string `json:"eventId"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.EventID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId is required"})
	}
	res, err := h.Ledger.ReserveIndividual(c.Request().Context(), strings.TrimSpace(body.EventID), uid)
	if err != nil {
		return h.reserveError(c, err)
	}
	h.publishConfirmed(c, res)
	return c.JSON(http.StatusCreated, echo.Map{
		"bookingId":     res.Booking.ID,
		"booking":       res.Booking,
		"seatsReserved": res.SeatsReserved,
	})
}

// CreateGroup handles POST /api/bookings/group.  Body: {"eventId": "...",
// "guestNames": ["..."]}.  Reserves a seat for the caller when they do not
// hold one yet, plus one seat per new guest name.
func (h *BookingHandler) CreateGroup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		EventID    string   `json:"eventId"`
		GuestNames []string `json:"guestNames"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.EventID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId is required"})
	}
	res, err := h.Ledger.ReserveGroup(c.Request().Context(), strings.TrimSpace(body.EventID), uid, body.GuestNames)
	if err != nil {
		return h.reserveError(c, err)
	}
	h.publishConfirmed(c, res)
	return c.JSON(http.StatusCreated, echo.Map{
		"bookingId":     res.Booking.ID,
		"booking":       res.Booking,
		"seatsReserved": res.SeatsReserved,
	})
}

// ListMine handles GET /api/bookings/my, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Bookings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "booking not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Cancel handles DELETE /api/bookings/:id.  Only the booking owner may
// cancel, only confirmed bookings can be cancelled, and cancellation closes
// 24 hours before the event starts.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("id")
	freed, err := h.Ledger.Release(c.Request().Context(), bookingID, uid)
	if err != nil {
		return h.releaseError(c, err)
	}
	h.publishCancelled(c, bookingID, uid, freed)
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "cancelled",
		"seatsFreed": freed,
	})
}

// CancelByEvent handles DELETE /api/bookings/by-event/:eventId, cancelling
// the caller's confirmed booking for that event without knowing its ID.
func (h *BookingHandler) CancelByEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, err := h.Bookings.FindConfirmedByEventAndUser(c.Request().Context(), c.Param("eventId"), uid)
	if err != nil {
		return repoError(c, err, "no confirmed booking for this event")
	}
	freed, err := h.Ledger.Release(c.Request().Context(), booking.ID, uid)
	if err != nil {
		return h.releaseError(c, err)
	}
	h.publishCancelled(c, booking.ID, uid, freed)
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "cancelled",
		"bookingId":  booking.ID,
		"seatsFreed": freed,
	})
}

// reserveError translates reservation failures.  Capacity shortfalls
// include the number of seats still available so clients can adjust.
func (h *BookingHandler) reserveError(c echo.Context, err error) error {
	var capErr *ledger.CapacityError
	switch {
	case errors.Is(err, ledger.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, ledger.ErrEventClosed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event is not open for booking"})
	case errors.Is(err, ledger.ErrAlreadyJoined):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "already joined this event"})
	case errors.Is(err, ledger.ErrNoNewSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no new seats requested"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     "not enough seats available",
			"available": capErr.Available,
		})
	case errors.Is(err, store.ErrTxExhausted):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage contention, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func (h *BookingHandler) releaseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, ledger.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, ledger.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, ledger.ErrNotConfirmed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is not confirmed"})
	case errors.Is(err, ledger.ErrWindowClosed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cancellation closes 24 hours before the event"})
	case errors.Is(err, store.ErrTxExhausted):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage contention, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func (h *BookingHandler) publishConfirmed(c echo.Context, res *ledger.ReserveResult) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.PublishBookingConfirmed(c.Request().Context(), res.Booking, res.SeatsReserved); err != nil {
		c.Logger().Warnf("publish booking confirmed: %v", err)
	}
}

func (h *BookingHandler) publishCancelled(c echo.Context, bookingID, uid string, freed int) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.PublishBookingCancelled(c.Request().Context(), bookingID, uid, freed); err != nil {
		c.Logger().Warnf("publish booking cancelled: %v", err)
	}
}
