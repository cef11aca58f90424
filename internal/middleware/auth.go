// Package middleware provides the Echo middlewares used by the router:
// bearer-token authentication, admin gating, distributed rate limiting and
// response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxUserName  = "user_name"
)

// RequireAuth verifies the Authorization bearer token and stores the
// caller's identity in the request context.  Requests without a valid token
// are rejected with 401.
func RequireAuth(v auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get("Authorization"))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			id, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			c.Set(CtxUserID, id.UID)
			c.Set(CtxUserEmail, id.Email)
			c.Set(CtxUserName, id.Name)
			return next(c)
		}
	}
}

// RequireAdmin allows the request through only when the authenticated
// user's document carries the admin role.  Must run after RequireAuth.
func RequireAdmin(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get(CtxUserID).(string)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			u, err := users.Get(c.Request().Context(), uid)
			if err != nil || u.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
