package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/config"
	"github.com/eventbook/eventbook/internal/database"
	"github.com/eventbook/eventbook/internal/handler"
	"github.com/eventbook/eventbook/internal/ledger"
	"github.com/eventbook/eventbook/internal/queue"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/router"
	"github.com/eventbook/eventbook/internal/service"
	"github.com/eventbook/eventbook/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	docs := store.NewMySQLStore(db)
	if err := docs.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(docs)
	events := repository.NewEventRepo(docs)
	bookings := repository.NewBookingRepo(docs)
	friends := repository.NewFriendRepo(docs)
	suggestions := repository.NewSuggestionRepo(docs)
	ldg := ledger.New(docs)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	publisher := service.NewQueuePublisher()

	// nil client disables the cache and rate limiter
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(verifier, users),
		Bookings:    handler.NewBookingHandler(ldg, bookings, events, publisher),
		Events:      handler.NewEventHandler(events),
		Admin:       handler.NewAdminHandler(events, ldg),
		Profile:     handler.NewProfileHandler(users),
		Friends:     handler.NewFriendsHandler(friends, users),
		Suggestions: handler.NewSuggestionHandler(suggestions),
	}, verifier, users, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
