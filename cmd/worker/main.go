package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/worker"
	"github.com/jwalitptl/booking-api/pkg/logger"
	redisBroker "github.com/jwalitptl/booking-api/pkg/messaging/redis"
)

// overrides lets deployment set worker-specific values without a
// config file change.
type overrides struct {
	RedisURL string `envconfig:"WORKER_REDIS_URL"`
	SMTPHost string `envconfig:"WORKER_SMTP_HOST"`
	SMTPPort int    `envconfig:"WORKER_SMTP_PORT"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env overrides
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read environment overrides")
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.SMTPHost != "" {
		cfg.SMTP.Host = env.SMTPHost
	}
	if env.SMTPPort != 0 {
		cfg.SMTP.Port = env.SMTPPort
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	lg := &logger.Logger{ZL: log.Logger}
	broker, err := redisBroker.NewRedisBroker(cfg.Redis.URL, &lg.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	userRepo := postgres.NewUserRepository(db)
	emailSvc := email.NewService(cfg.SMTP)
	notifier := worker.NewNotifier(broker, userRepo, emailSvc, lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("notification worker started")
	if err := notifier.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("worker exited properly")
}
