package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumebuilder/internal/app"
	"resumebuilder/internal/config"
	"resumebuilder/internal/database"
	"resumebuilder/internal/events"
	"resumebuilder/internal/logging"
	"resumebuilder/internal/ratelimit"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/seed"
	"resumebuilder/internal/services"
	"resumebuilder/internal/storage"
	"resumebuilder/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
)

const eventsExchange = "resume_builder.events"

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.Environment)

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseDSN,
		LogLevel: cfg.LogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	userRepo := repositories.NewGORMUserRepository(db)
	resumeRepo := repositories.NewGORMResumeRepository(db)

	// --- Photo storage ---
	var (
		photos    storage.PhotoStore
		uploadDir string
	)
	switch cfg.PhotoStore {
	case "r2":
		photos, err = storage.NewR2PhotoStore(storage.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			Region:          cfg.R2.Region,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
			MaxBytes:        cfg.UploadMaxBytes,
		})
	default:
		var local *storage.LocalPhotoStore
		local, err = storage.NewLocalPhotoStore(cfg.UploadDir, "/uploads", cfg.UploadMaxBytes)
		if err == nil {
			photos = local
			uploadDir = local.Dir()
		}
	}
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.PhotoStore).Msg("failed to initialize photo store")
	}

	// --- OTP rate limiting ---
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, ratelimit.Config{
			Cooldown:     cfg.OTP.Cooldown,
			Window:       cfg.OTP.Window,
			MaxPerWindow: cfg.OTP.MaxPerWindow,
		})
	} else {
		log.Warn().Msg("REDIS_URL not set, OTP requests are not rate limited")
	}

	// --- Events ---
	var publisher events.Publisher = events.LogPublisher{}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: eventsExchange})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = events.NewBrokerPublisher(mqClient)

		if err := mqClient.Consume(events.SMSDispatchQueue, events.OTPIssued, events.HandleOTPIssued); err != nil {
			log.Error().Err(err).Msg("failed to start SMS dispatch consumer")
		}
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, photos, limiter, publisher, services.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		OTPTTL:     cfg.OTP.TTL,
		BcryptCost: cfg.BcryptCost,
	})
	resumeService := services.NewResumeService(resumeRepo, publisher)

	if cfg.SeedDemoData {
		if err := seed.Run(context.Background(), userRepo, resumeRepo, cfg.BcryptCost); err != nil {
			log.Error().Err(err).Msg("failed to seed demo data")
		}
	}

	// --- HTTP ---
	server := app.New(app.Options{
		CORSOrigins:   cfg.CORSOrigins,
		ExposeOTP:     cfg.OTP.Expose,
		MaxPhotoBytes: cfg.UploadMaxBytes,
		UploadDir:     uploadDir,
		Database:      cfg.DBDriver,
		AccessLog:     true,
	}, authService, resumeService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
