package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/sentisocial/config"
	"github.com/spacesedan/sentisocial/internal/api"
	"github.com/spacesedan/sentisocial/internal/bootstrap"
	"github.com/spacesedan/sentisocial/internal/clients"
	"github.com/spacesedan/sentisocial/internal/clients/kafka_client"
	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/dispatch"
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
	repo := db.NewRepository(pg.DB)

	healthy := &atomic.Bool{}
	healthy.Store(true)
	if inf.HealthCheck != nil {
		go monitoring.MonitorInferenceHealth(ctx, "remote-inference", cfg.Models.HealthInterval, healthy, inf.HealthCheck)
	}

	var dispatcher dispatch.Dispatcher
	switch cfg.Dispatch.Mode {
	case config.DispatchModeKafka:
		producer, err := kafka_client.NewProducer(cfg.Kafka)
		if err != nil {
			slog.Error("[Main] Failed to create Kafka producer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer producer.Close()
		dispatcher = dispatch.NewKafkaDispatcher(producer, cfg.Kafka.Topic)
	default:
		archive, err := bootstrap.BuildArchive(ctx, cfg.Archive)
		if err != nil {
			slog.Error("[Main] Failed to create analysis archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		dispatcher = bootstrap.NewLocalPipeline(bootstrap.BuildHandler(repo, inf, archive), archive, cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
	}

	auth, err := api.NewAuthenticator(cfg.Auth.JWTSecret)
	if err != nil {
		slog.Error("[Main] Invalid auth configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	server := api.NewServer(repo, inf.Analyzer, dispatcher, auth).WithInferenceHealth(healthy)

	go func() {
		if err := server.Start(":" + cfg.App.Port); err != nil {
			slog.Error("[Main] HTTP server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("[Main] HTTP shutdown incomplete", slog.String("error", err.Error()))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Warn("[Main] Pending analyses dropped", slog.String("error", err.Error()))
	}
}
