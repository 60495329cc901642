package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yashchoudhary3/flight-app/api"
	"github.com/Yashchoudhary3/flight-app/config"
	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/bootstrap"
	"github.com/Yashchoudhary3/flight-app/internal/cache"
	"github.com/Yashchoudhary3/flight-app/internal/kafka"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/Yashchoudhary3/flight-app/internal/service/booking"
	"github.com/Yashchoudhary3/flight-app/internal/service/flights"
	"github.com/Yashchoudhary3/flight-app/internal/service/users"
	"github.com/Yashchoudhary3/flight-app/internal/stream"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	searchTTL := time.Duration(cfg.Booking.SearchCacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, searchTTL)
	verifier := auth.NewRedisVerifier(cfg.Redis)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	broadcaster := stream.NewBroadcaster()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache, broadcaster)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
	)
	userService := users.NewUserService(userRepo)

	handlers := bootstrap.Handlers{
		Flights:  api.NewFlightHandler(flightService, broadcaster),
		Bookings: api.NewBookingHandler(bookingService),
		Users:    api.NewUserHandler(userService),
	}

	if err := bootstrap.Run(ctx, cfg, verifier, handlers); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
