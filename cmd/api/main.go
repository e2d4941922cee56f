// Package main is the entrypoint for the murmur API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/murmur/murmur/internal/archive"
	"github.com/murmur/murmur/internal/auth"
	"github.com/murmur/murmur/internal/cache"
	"github.com/murmur/murmur/internal/config"
	"github.com/murmur/murmur/internal/events"
	"github.com/murmur/murmur/internal/handler"
	"github.com/murmur/murmur/internal/metrics"
	"github.com/murmur/murmur/internal/migrations"
	"github.com/murmur/murmur/internal/repository"
	"github.com/murmur/murmur/internal/router"
	"github.com/murmur/murmur/internal/server"
	"github.com/murmur/murmur/internal/service"
	"github.com/murmur/murmur/internal/transcribe"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to apply migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("migrations failed")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	// Declared as interfaces so an unconfigured Redis stays a true nil.
	var (
		historyCache service.HistoryCache
		redisHealth  handler.HealthChecker
		redisClient  *cache.Cache
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			repo.Close()
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return errors.New("redis unavailable")
		}
		historyCache = redisClient
		redisHealth = redisClient
		logger.Info("connected to Redis")
	}

	publisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		repo.Close()
		return err
	}
	logger.Info("event publisher ready", "backend", cfg.EventsBackend)

	var store archive.Store = archive.Noop{}
	if cfg.ArchiveEnabled() {
		s3Store, err := archive.NewS3(ctx, archive.S3Config{
			Bucket:    cfg.ArchiveBucket,
			Region:    cfg.ArchiveRegion,
			Endpoint:  cfg.ArchiveEndpoint,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
		})
		if err != nil {
			_ = publisher.Close()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			repo.Close()
			return err
		}
		store = s3Store
		logger.Info("audio archive enabled", "bucket", cfg.ArchiveBucket)
	}

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)

	gateway := transcribe.NewOpenAI(transcribe.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.TranscriptionModel,
		HTTPClient: transcribe.NewHTTPClient(),
	})

	accounts := service.NewAccountService(repo, tokens, logger, recorder)
	transcriptions := service.NewTranscriptionService(service.TranscriptionDeps{
		Store:     repo,
		Gateway:   gateway,
		Cache:     historyCache,
		Archive:   store,
		Publisher: publisher,
		Metrics:   recorder,
		Logger:    logger,
		Timeout:   cfg.TranscriptionTimeout,
		CacheTTL:  cfg.HistoryCacheTTL,
	})

	r := router.New(router.Deps{
		Logger:             logger,
		Accounts:           accounts,
		Transcriptions:     transcriptions,
		Verifier:           tokens,
		Metrics:            recorder,
		DB:                 repo,
		Cache:              redisHealth,
		UploadDir:          cfg.UploadDir,
		MaxUploadSize:      cfg.MaxUploadSize,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		Development:        cfg.IsDevelopment(),
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: the publisher closes first, the pool last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if redisClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	srv.OnShutdown("events", func(context.Context) error {
		return publisher.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"model", cfg.TranscriptionModel,
	)

	return srv.Run(ctx)
}

// newPublisher builds the configured event publisher.
func newPublisher(cfg *config.Config, redisClient *cache.Cache) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsRedis:
		return events.NewRedisStream(redisClient.Client(), ""), nil
	case config.EventsAMQP:
		p, err := events.NewAMQP(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			return nil, errors.New("amqp unavailable: " + sanitizeError(err, cfg.AMQPURL))
		}
		return p, nil
	default:
		return events.Noop{}, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
