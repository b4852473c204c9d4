package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"webPageProbeGO/internal/analyzer"
	"webPageProbeGO/internal/api"
	"webPageProbeGO/internal/config"
	"webPageProbeGO/internal/metrics"
	"webPageProbeGO/internal/repository"
)

func main() {
	logger := setupLogger()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		logger.Error("Failed to create config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	store := repository.NewMemoryTaskStore(cfg.Tasks.TTL, logger)
	go store.Run(ctx, cfg.Tasks.SweepInterval)

	fetcher := analyzer.NewFetcher(cfg.Analyzer, logger)
	runner := analyzer.NewSampleRunner(fetcher, cfg.Analyzer.RequestTimeout, logger)
	orchestrator := analyzer.NewOrchestrator(runner, store, cfg.Analyzer, logger, analyzer.WithRecorder(collector))

	server := api.NewServer(cfg, orchestrator, store, metrics.Handler(reg), logger)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			shutdown <- syscall.SIGTERM
		}
	}()

	logger.Info("Server started",
		"port", cfg.Server.Port,
		"workers", cfg.Analyzer.MaxWorkers,
		"requests_per_second", cfg.Analyzer.RequestsPerSecond,
		"task_ttl", cfg.Tasks.TTL.String(),
	)

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited properly")
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
