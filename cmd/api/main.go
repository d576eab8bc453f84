package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/config"
	appointmentHandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/booking-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/booking-api/internal/handler/doctor"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	bookingService "github.com/jwalitptl/booking-api/internal/service/booking"
	doctorService "github.com/jwalitptl/booking-api/internal/service/doctor"
	scheduleService "github.com/jwalitptl/booking-api/internal/service/schedule"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	redisBroker "github.com/jwalitptl/booking-api/pkg/messaging/redis"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	// The broker is optional: booking still works without Redis, events
	// are just not published.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		logger := log.Logger
		broker, err = redisBroker.NewRedisBroker(cfg.Redis.URL, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	m := metrics.NewMetrics("booking")
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	authSvc := authService.NewService(userRepo, jwtSvc)
	doctorSvc := doctorService.NewService(doctorRepo)
	scheduleSvc := scheduleService.NewService(doctorRepo, slotRepo, m)
	bookingLogger := log.Logger
	bookingSvc := bookingService.NewService(doctorRepo, slotRepo, appointmentRepo, broker, m, &bookingLogger)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
		},
		db,
		authHandler.NewHandler(authSvc, doctorSvc),
		doctorHandler.NewHandler(doctorSvc, scheduleSvc, authMiddleware),
		appointmentHandler.NewHandler(bookingSvc, authMiddleware),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
