package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"resumeKit/internal/ai"
	"resumeKit/internal/api"
	"resumeKit/internal/auth"
	"resumeKit/internal/config"
	"resumeKit/internal/database"
	"resumeKit/internal/export"
	"resumeKit/internal/logging"
	"resumeKit/internal/metrics"
	"resumeKit/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		fatal(logger, "init database", err)
	}
	if err := database.Migrate(db); err != nil {
		fatal(logger, "auto migrate", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("db", cfg.Database.Name),
	)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		fatal(logger, "ping redis", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		fatal(logger, "init storage client", err)
	}

	publicKey, err := cfg.Auth.PublicKey()
	if err != nil {
		fatal(logger, "load auth public key", err)
	}
	verifier, err := auth.NewVerifier(publicKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		fatal(logger, "init token verifier", err)
	}

	var generator ai.Generator
	if cfg.AI.APIKey != "" {
		generator = ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
	} else {
		logger.Warn("ai api key not configured, suggestions will use fallback content")
	}

	fonts, err := export.FontsFromFiles(cfg.Export.FontRegular, cfg.Export.FontBold)
	if err != nil {
		fatal(logger, "load export fonts", err)
	}
	exporter := export.New(
		export.WithLogger(logger),
		export.WithCompression(cfg.Export.Compress),
		export.WithFonts(fonts),
		export.WithObserver(metrics.ExportObserver()),
	)

	resumeHandler := api.NewResumeHandler(
		database.NewStore(db),
		exporter,
		asynqClient,
		storageClient,
		api.NewRedisLocker(redisClient),
		ai.NewService(generator, logger),
		api.ResumeHandlerOptions{
			LockTTL:        cfg.Export.LockTTL,
			DownloadURLTTL: cfg.Export.DownloadURLTTL,
			MaxRetry:       cfg.Export.MaxRetry,
			PreviewCache:   cache.New(cfg.API.PreviewCacheTTL, 2*cfg.API.PreviewCacheTTL),
		},
	)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, resumeHandler, verifier, redisClient, logger, cfg.API.Origins())

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	if err := router.Run(address); err != nil {
		fatal(logger, "start api server", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
