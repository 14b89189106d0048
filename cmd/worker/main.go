package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeKit/internal/browser"
	"resumeKit/internal/config"
	"resumeKit/internal/database"
	"resumeKit/internal/export"
	"resumeKit/internal/logging"
	"resumeKit/internal/metrics"
	"resumeKit/internal/storage"
	"resumeKit/internal/tasks"
	"resumeKit/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		fatal(logger, "init database", err)
	}
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		fatal(logger, "init storage client", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
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

	renderer := browser.NewRenderer(logger, browser.Config{
		ViewportWidth: cfg.Export.ViewportWidth,
		Scale:         cfg.Export.Scale,
		Timeout:       cfg.Export.RenderTimeout,
		Bin:           cfg.Export.BrowserBin,
	})
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

	exportHandler := worker.NewExportTaskHandler(
		database.NewStore(db),
		exporter,
		storageClient,
		renderer.Materialize,
		worker.RedisPublisher{Client: redisClient},
		logger,
	)

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Export.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeExportGenerate, exportHandler)

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Export.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
