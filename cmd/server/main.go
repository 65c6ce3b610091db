package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/config"
	"github.com/lodgio/room-booking/internal/database"
	"github.com/lodgio/room-booking/internal/handler"
	"github.com/lodgio/room-booking/internal/middleware"
	"github.com/lodgio/room-booking/internal/queue"
	"github.com/lodgio/room-booking/internal/repository"
	"github.com/lodgio/room-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public room-listing cache.
	// A nil client disables both without failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewRefreshTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	cacheCfg := config.LoadCacheConfig()
	invalidateListing := middleware.NewCacheInvalidator(cacheCfg, rdb, http.MethodGet, "/v1/rooms")

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	roomHandler := handler.NewRoomHandler(rooms)
	roomHandler.Invalidate = invalidateListing
	bookingHandler := handler.NewBookingHandler(rooms, bookings)
	bookingHandler.Invalidate = invalidateListing

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(cacheCfg, rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRooms(e, roomHandler, cfg.JWTSecret, cacheMW)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret)

	// Consume booking events in the background; the loop reconnects on
	// broker failures and never stops the server.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
