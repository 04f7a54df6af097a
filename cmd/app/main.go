package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skyreserve/api"
	"github.com/Domenick1991/skyreserve/config"
	"github.com/Domenick1991/skyreserve/internal/bootstrap"
	"github.com/Domenick1991/skyreserve/internal/cache"
	"github.com/Domenick1991/skyreserve/internal/kafka"
	"github.com/Domenick1991/skyreserve/internal/logger"
	"github.com/Domenick1991/skyreserve/internal/repository"
	"github.com/Domenick1991/skyreserve/internal/service/auth"
	"github.com/Domenick1991/skyreserve/internal/service/booking"
	"github.com/Domenick1991/skyreserve/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
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

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, lg)
	stop()
	if err != nil {
		lg.Error("server error", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
	_ = lg.Sync()
}

// run wires the application and serves until ctx is canceled. Every resource
// it opens is closed before it returns.
func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, cfg.Catalog.CacheTTL())

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		lg.Warn("kafka unavailable, booking events will be dropped", zap.Error(err))
	}

	tokenTTL, err := cfg.Auth.TokenTTL()
	if err != nil {
		return fmt.Errorf("parse token ttl: %w", err)
	}

	txManager := repository.NewTxManager(pool)
	flightRepo := repository.NewFlightRepository(pool, repository.WithLockTimeout(cfg.Reservation.LockTimeout()))
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, tokenTTL, lg)
	flightService := flights.NewFlightService(flightRepo, lg,
		flights.WithCache(redisCache),
		flights.WithPageSize(cfg.Catalog.DefaultPageSize, cfg.Catalog.MaxPageSize),
	)
	bookingService := booking.NewBookingService(txManager, flightRepo, bookingRepo, userRepo, lg,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithRetry(cfg.Reservation.MaxAttempts, cfg.Reservation.RetryBackoff()),
	)

	deps := api.Deps{
		Log:      lg,
		Auth:     authService,
		Flights:  flightService,
		Bookings: bookingService,
		Health: map[string]api.Pinger{
			"postgres": pool,
			"redis":    redisCache,
		},
	}
	if cfg.Throttle.Enabled {
		deps.Limiter = cache.NewRateLimiter(redisClient, cfg.Throttle.Requests, cfg.Throttle.Window())
	}

	return bootstrap.Run(ctx, cfg, api.NewRouter(deps), lg)
}
