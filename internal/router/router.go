// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/config"
	"github.com/eventbook/eventbook/internal/handler"
	"github.com/eventbook/eventbook/internal/middleware"
	"github.com/eventbook/eventbook/internal/repository"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth        *handler.AuthHandler
	Bookings    *handler.BookingHandler
	Events      *handler.EventHandler
	Admin       *handler.AdminHandler
	Profile     *handler.ProfileHandler
	Friends     *handler.FriendsHandler
	Suggestions *handler.SuggestionHandler
}

// Register wires all routes.  The event listing sits behind the response
// cache; booking mutations sit behind the rate limiter; everything under
// /api except login and the public event endpoints requires a bearer
// token, and /api/admin additionally requires the admin role.
func Register(e *echo.Echo, h Handlers, verifier auth.Verifier, users *repository.UserRepo, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	requireAuth := middleware.RequireAuth(verifier)
	requireAdmin := middleware.RequireAdmin(users)
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	api := e.Group("/api")

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/verify", h.Auth.Verify, requireAuth)

	api.GET("/events", h.Events.List, cache)
	api.GET("/events/:id", h.Events.Get)

	bookings := api.Group("/bookings", requireAuth, rateLimit)
	bookings.POST("/individual", h.Bookings.CreateIndividual)
	bookings.POST("/group", h.Bookings.CreateGroup)
	bookings.GET("/my", h.Bookings.ListMine)
	bookings.DELETE("/by-event/:eventId", h.Bookings.CancelByEvent)
	bookings.DELETE("/:id", h.Bookings.Cancel)

	api.GET("/profile", h.Profile.Get, requireAuth)
	api.PUT("/profile", h.Profile.Update, requireAuth)

	friends := api.Group("/friends", requireAuth)
	friends.POST("/request", h.Friends.Request)
	friends.PUT("/request/:id", h.Friends.Respond)
	friends.GET("", h.Friends.List)
	friends.GET("/requests", h.Friends.Pending)
	friends.DELETE("/:uid", h.Friends.Remove)

	api.POST("/suggestions", h.Suggestions.Create, requireAuth)

	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.GET("/health", handler.Health)
	admin.POST("/events", h.Admin.CreateEvent)
	admin.PUT("/events/:id", h.Admin.UpdateEvent)
	admin.DELETE("/events/:id", h.Admin.DeleteEvent)
	admin.GET("/suggestions", h.Suggestions.ListAll)
}
