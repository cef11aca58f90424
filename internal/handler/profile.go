package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Users *repository.UserRepo
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Users: users}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.Get(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PUT /api/profile.  The body may carry any subset of the
// editable profile fields; each is validated and normalized before being
// merged into the user document, leaving unrelated fields intact.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updates, err := model.SanitizeProfileUpdates(body)
	if err != nil {
		if errors.Is(err, model.ErrNoProfileFields) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid profile fields provided"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Users.Merge(c.Request().Context(), uid, updates); err != nil {
		return repoError(c, err, "user not found")
	}
	u, err := h.Users.Get(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}
