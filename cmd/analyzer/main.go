package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/sentisocial/config"
	"github.com/spacesedan/sentisocial/internal/bootstrap"
	"github.com/spacesedan/sentisocial/internal/clients"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client"
	"github.com/spacesedan/sentisocial/internal/consumers"
	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/logging"
	"github.com/spacesedan/sentisocial/internal/monitoring"
)

func main() {
	config.LoadEnv(os.Getenv("APP_ENV"))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inf, err := bootstrap.BuildAnalyzer(ctx, cfg.Models)
	if err != nil {
		slog.Error("[Main] Failed to load models", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer inf.Close()

	pg, err := clients.GetPostgresClient(ctx, cfg.Database)
	if err != nil {
		slog.Error("[Main] Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pg.Close()

	archive, err := bootstrap.BuildArchive(ctx, cfg.Archive)
	if err != nil {
		slog.Error("[Main] Failed to create analysis archive", slog.String("error", err.Error()))
		os.Exit(1)
	}

	archiveRunner := bootstrap.StartArchive(archive)

	var dedupe consumers.Deduper
	if cfg.Valkey.Address != "" {
		vc, err := clients.NewValkeyClient(ctx, cfg.Valkey)
		if err != nil {
			slog.Error("[Main] Failed to connect to Valkey", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer vc.Close()
		dedupe = vc
	}

	healthy := &atomic.Bool{}
	healthy.Store(true)
	if inf.HealthCheck != nil {
		go monitoring.MonitorInferenceHealth(ctx, "remote-inference", cfg.Models.HealthInterval, healthy, inf.HealthCheck)
	}

	consumer := consumers.NewAnalysisConsumer(bootstrap.BuildHandler(db.NewRepository(pg.DB), inf, archive), dedupe)
	run := consumers.WrapConsumer(consumer.StartAnalysisConsumer).WithHealthCheck(healthy).Handler()

	if err := kafka_client.RunConsumer(ctx, cfg.Kafka, run); err != nil {
		slog.Error("[Main] Failed to start consumer", slog.String("error", err.Error()))
	}

	// The consumer loop has returned, so no handler can record anymore.
	archiveRunner.Stop()
}
