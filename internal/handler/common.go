// Package handler contains the HTTP handlers.  Handlers bind and validate
// request bodies, delegate to the ledger and repositories, and translate
// their errors into JSON responses.  Authentication and role checks are
// performed by middleware before any handler runs.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/middleware"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

// getUserID extracts the authenticated user's uid from the context.  It
// fails only when a route was misregistered without the auth middleware.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get(middleware.CtxUserID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no authenticated user in context")
}

// repoError maps repository sentinel errors to responses shared by several
// handlers.  Unknown errors become an opaque 500.
func repoError(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, store.ErrTxExhausted):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage contention, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
