package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/repository"
)

// AuthHandler exchanges identity-provider tokens for application sessions.
// The provider owns credentials; this service only verifies its tokens and
// maintains the matching user document.
type AuthHandler struct {
	Verifier auth.Verifier
	Users    *repository.UserRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(v auth.Verifier, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Verifier: v, Users: users}
}

// Login handles POST /api/auth/login.  The body carries the provider's ID
// token; on first login the user document is auto-provisioned with the
// default role.  Returns the user record the client should treat as its
// session identity.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	id, err := h.Verifier.Verify(strings.TrimSpace(body.Token))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	u, err := h.Users.Ensure(c.Request().Context(), id.UID, id.Email, id.Name)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Verify handles GET /api/auth/verify.  It confirms that the bearer token
// in the Authorization header is still valid and reports the uid and role
// it maps to.
func (h *AuthHandler) Verify(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.Get(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"uid":   u.UID,
		"role":  u.Role,
	})
}
