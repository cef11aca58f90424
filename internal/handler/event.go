package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/repository"
)

// EventHandler serves the public event listing and detail endpoints.
type EventHandler struct {
	Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: events}
}

// List handles GET /api/events.  Supported query parameters: category,
// status, timing, search, limit, offset.  Events come back soonest first
// with a total count for paging.
func (h *EventHandler) List(c echo.Context) error {
	f := repository.EventFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Timing:   c.QueryParam("timing"),
		Search:   c.QueryParam("search"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}
	events, total, err := h.Events.List(c.Request().Context(), f)
	if err != nil {
		return repoError(c, err, "event not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"total":  total,
	})
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	ev, err := h.Events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(c, err, "event not found")
	}
	return c.JSON(http.StatusOK, ev)
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
