package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/ledger"
	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

// AdminHandler serves event management for admin users.  Capacity changes
// are routed through the ledger so they respect the seats already taken;
// every other field goes through the repository's field-level update.
type AdminHandler struct {
	Events *repository.EventRepo
	Ledger *ledger.Ledger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(events *repository.EventRepo, l *ledger.Ledger) *AdminHandler {
	return &AdminHandler{Events: events, Ledger: l}
}

type eventBody struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	EndTime         string `json:"endTime"`
	MaxParticipants int    `json:"maxParticipants"`
	ImageURL        string `json:"imageUrl"`
}

// CreateEvent handles POST /api/admin/events.  New events start in the
// upcoming status with zero seats taken.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev := &model.Event{
		Title:           strings.TrimSpace(body.Title),
		Description:     strings.TrimSpace(body.Description),
		Category:        strings.TrimSpace(strings.ToLower(body.Category)),
		Location:        strings.TrimSpace(body.Location),
		Date:            strings.TrimSpace(body.Date),
		StartTime:       strings.TrimSpace(body.Time),
		EndTime:         strings.TrimSpace(body.EndTime),
		MaxParticipants: body.MaxParticipants,
		ImageURL:        strings.TrimSpace(body.ImageURL),
		CreatedBy:       uid,
	}
	if msg := validateEvent(ev); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	id, err := h.Events.Create(c.Request().Context(), ev)
	if err != nil {
		return repoError(c, err, "event not found")
	}
	created, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err, "event not found")
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateEvent handles PUT /api/admin/events/:id.  The body may carry any
// subset of the editable fields.  maxParticipants is applied through the
// ledger and rejected when it would fall below the seats already taken.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id := c.Param("id")
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	fields := store.Doc{}
	for k, v := range body {
		switch k {
		case "title", "description", "location", "date", "time", "endTime", "imageUrl":
			s, ok := v.(string)
			if !ok {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": k + " must be a string"})
			}
			fields[k] = strings.TrimSpace(s)
		case "category":
			s, _ := v.(string)
			s = strings.TrimSpace(strings.ToLower(s))
			if !model.ValidCategory(s) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
			}
			fields[k] = s
		case "status":
			s, _ := v.(string)
			switch s {
			case model.EventStatusUpcoming, model.EventStatusCompleted, model.EventStatusCancelled:
				fields[k] = s
			default:
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
			}
		case "maxParticipants":
			// handled below via the ledger
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown field: " + k})
		}
	}

	ev, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err, "event not found")
	}

	// reject schedule edits that would leave an unparsable start instant
	if d, ok := fields["date"].(string); ok {
		ev.Date = d
	}
	if t, ok := fields["time"].(string); ok {
		ev.StartTime = t
	}
	if _, err := ev.StartAt(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or time"})
	}

	if raw, ok := body["maxParticipants"]; ok {
		n := store.AsInt64(raw)
		if err := h.Ledger.UpdateCapacity(c.Request().Context(), id, int(n)); err != nil {
			switch {
			case errors.Is(err, ledger.ErrEventNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
			case errors.Is(err, ledger.ErrCapacityBelowCurrent):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxParticipants cannot be below current participants"})
			default:
				return repoError(c, err, "event not found")
			}
		}
	}

	if len(fields) > 0 {
		if err := h.Events.UpdateFields(c.Request().Context(), id, fields); err != nil {
			return repoError(c, err, "event not found")
		}
	}

	updated, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err, "event not found")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteEvent handles DELETE /api/admin/events/:id.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	if err := h.Events.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return repoError(c, err, "event not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

func validateEvent(ev *model.Event) string {
	if ev.Title == "" {
		return "title is required"
	}
	if !model.ValidCategory(ev.Category) {
		return "invalid category"
	}
	if ev.Location == "" {
		return "location is required"
	}
	if ev.MaxParticipants <= 0 {
		return "maxParticipants must be positive"
	}
	if _, err := time.Parse("2006-01-02", ev.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", ev.StartTime); err != nil {
		return "time must be HH:MM"
	}
	if ev.EndTime != "" {
		if _, err := time.Parse("15:04", ev.EndTime); err != nil {
			return "endTime must be HH:MM"
		}
	}
	return ""
}
