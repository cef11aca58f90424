package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/repository"
)

// FriendsHandler serves friend requests and the friends list.
type FriendsHandler struct {
	Friends *repository.FriendRepo
	Users   *repository.UserRepo
}

// NewFriendsHandler constructs a FriendsHandler.
func NewFriendsHandler(friends *repository.FriendRepo, users *repository.UserRepo) *FriendsHandler {
	return &FriendsHandler{Friends: friends, Users: users}
}

// Request handles POST /api/friends/request.  The target may be addressed
// by uid or by email; exactly one must be provided.
func (h *FriendsHandler) Request(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	target := strings.TrimSpace(body.UID)
	if target == "" && strings.TrimSpace(body.Email) != "" {
		u, err := h.Users.GetByEmail(c.Request().Context(), body.Email)
		if err != nil {
			return repoError(c, err, "user not found")
		}
		target = u.UID
	}
	if target == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "uid or email is required"})
	}
	if _, err := h.Users.Get(c.Request().Context(), target); err != nil {
		return repoError(c, err, "user not found")
	}
	req, err := h.Friends.CreateRequest(c.Request().Context(), uid, target)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusCreated, req)
}

// Respond handles PUT /api/friends/request/:id.  Body: {"action":
// "accept"|"reject"}.  Only the addressee may respond; acceptance links
// both users atomically.
func (h *FriendsHandler) Respond(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	action := strings.TrimSpace(body.Action)
	if action != "accept" && action != "reject" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be accept or reject"})
	}
	req, err := h.Friends.Respond(c.Request().Context(), c.Param("id"), uid, action == "accept")
	if err != nil {
		return repoError(c, err, "friend request not found")
	}
	return c.JSON(http.StatusOK, req)
}

// List handles GET /api/friends.
func (h *FriendsHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	friends, err := h.Friends.ListFriends(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": friends})
}

// Pending handles GET /api/friends/requests, the caller's inbox of pending
// requests, oldest first.
func (h *FriendsHandler) Pending(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reqs, err := h.Friends.ListPendingFor(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "friend request not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

// Remove handles DELETE /api/friends/:uid, dissolving the friendship from
// both sides.
func (h *FriendsHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Friends.RemoveFriend(c.Request().Context(), uid, c.Param("uid")); err != nil {
		return repoError(c, err, "friend not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "removed"})
}
