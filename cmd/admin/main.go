package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"resumeKit/internal/config"
	"resumeKit/internal/database"
	"resumeKit/internal/logging"
	"resumeKit/internal/storage"
)

const pruneBatch = 200

func main() {
	var (
		migrate   = flag.Bool("migrate", false, "执行数据库迁移")
		pruneAge  = flag.Duration("prune-older-than", 0, "清理早于该时长结束的导出任务及其文件（如 168h），0 表示不清理")
		dryRun    = flag.Bool("dry-run", false, "只打印将被清理的任务")
		dbHost    = flag.String("db-host", "", "数据库 Host（可选，覆盖 DATABASE_HOST）")
		dbPort    = flag.Int("db-port", 0, "数据库 Port（可选，覆盖 DATABASE_PORT）")
		dbName    = flag.String("db-name", "", "数据库名（可选，覆盖 POSTGRES_DB）")
		dbSSLMode = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，覆盖 DATABASE_SSLMODE）")
	)
	flag.Parse()

	if !*migrate && *pruneAge <= 0 {
		log.Fatal("nothing to do: pass --migrate and/or --prune-older-than")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	overrideDatabase(&cfg.Database, *dbHost, *dbPort, *dbName, *dbSSLMode)
	logger := logging.New(cfg.Logging)

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if *migrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		fmt.Println("数据库迁移完成")
	}

	if *pruneAge > 0 {
		storageClient, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		n, err := prune(context.Background(), logger, database.NewStore(db), storageClient, time.Now().Add(-*pruneAge), *dryRun)
		if err != nil {
			log.Fatalf("prune export jobs: %v", err)
		}
		fmt.Printf("已清理导出任务: %d\n", n)
	}
}

func overrideDatabase(cfg *config.DatabaseConfig, host string, port int, name, sslmode string) {
	if h := strings.TrimSpace(host); h != "" {
		cfg.Host = h
	}
	if port > 0 {
		cfg.Port = port
	}
	if n := strings.TrimSpace(name); n != "" {
		cfg.Name = n
	}
	if s := strings.TrimSpace(sslmode); s != "" {
		cfg.SSLMode = s
	}
}

type jobPruner interface {
	ExpiredExportJobs(ctx context.Context, before time.Time, limit int) ([]database.ExportJob, error)
	DeleteExportJob(ctx context.Context, jobID string) error
}

type objectRemover interface {
	DeleteObject(ctx context.Context, objectKey string) error
}

// prune 先删对象再删记录，对象删除失败的任务保留到下次运行。
func prune(ctx context.Context, logger *slog.Logger, jobs jobPruner, objects objectRemover, before time.Time, dryRun bool) (int, error) {
	removed := 0
	skipped := map[string]bool{}
	for {
		batch, err := jobs.ExpiredExportJobs(ctx, before, pruneBatch+len(skipped))
		if err != nil {
			return removed, err
		}
		progressed := false
		for _, job := range batch {
			if skipped[job.ID] {
				continue
			}
			log := logger.With(slog.String("job_id", job.ID), slog.String("object_key", job.ObjectKey))
			if dryRun {
				fmt.Printf("%s\t%s\t%s\n", job.ID, job.Status, job.ObjectKey)
				skipped[job.ID] = true
				continue
			}
			if job.ObjectKey != "" {
				if err := objects.DeleteObject(ctx, job.ObjectKey); err != nil {
					log.Warn("delete export object failed", slog.Any("error", err))
					skipped[job.ID] = true
					continue
				}
			}
			if err := jobs.DeleteExportJob(ctx, job.ID); err != nil {
				return removed, err
			}
			removed++
			progressed = true
		}
		if !progressed {
			return removed, nil
		}
	}
}
