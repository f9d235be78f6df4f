package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/api"
	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/engine"
	"github.com/finpulse/finpulse/internal/host"
	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/monitor"
	"github.com/finpulse/finpulse/internal/notify"
	"github.com/finpulse/finpulse/internal/poller"
	"github.com/finpulse/finpulse/internal/scheduler"
	"github.com/finpulse/finpulse/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		// A bad service list is surfaced once; the engine still runs and
		// produces an all-zero overview.
		logger.Warn("Configuration problem, running degraded", zap.Error(err))
	}

	// Optional alert event publisher
	var publisher monitor.Publisher
	var natsPublisher *notify.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = notify.NewNATSPublisher(cfg.NATS.URL, "finpulse", logger)
		if err != nil {
			logger.Warn("Alert publisher unavailable, continuing without it", zap.Error(err))
		} else {
			publisher = natsPublisher
			defer natsPublisher.Close()
		}
	}

	// Optional alert audit archive
	var archiver monitor.Archiver
	var history *storage.AlertHistory
	if cfg.Archive.Enabled {
		history, err = storage.NewAlertHistory(logger, cfg.Archive.Path)
		if err != nil {
			logger.Warn("Alert archive unavailable, continuing without it", zap.Error(err))
		} else {
			archiver = history
			defer history.Close()
		}
	}

	// Wire the engine
	buffer := metrics.NewBuffer(cfg.BufferCapacity)
	alerts := monitor.NewAlertManager(cfg.Alerts, publisher, archiver, logger)
	svcPoller := poller.New(cfg.Services, cfg.PollTimeout, logger)
	eng := engine.New(svcPoller, buffer, alerts, cfg.Rules, cfg.PollInterval, logger)
	probe := host.NewProbe(buffer, logger)

	// Schedule the periodic tasks
	sched := scheduler.New(logger)
	if _, err := sched.Add("poll", cfg.PollInterval, eng.PollCycle); err != nil {
		logger.Fatal("Failed to register poll job", zap.Error(err))
	}
	if _, err := sched.Add("evaluate", cfg.EvaluationInterval, eng.EvaluateCycle); err != nil {
		logger.Fatal("Failed to register evaluation job", zap.Error(err))
	}
	if _, err := sched.Add("host-probe", cfg.HostProbeInterval, probe.Collect); err != nil {
		logger.Fatal("Failed to register host probe job", zap.Error(err))
	}
	if history != nil {
		if _, err := sched.Add("archive-cleanup", 24*time.Hour, func(ctx context.Context) {
			cutoff := time.Now().Add(-cfg.Archive.MaxAge)
			if err := history.DeleteBefore(ctx, cutoff); err != nil {
				logger.Error("Failed to clean up alert history", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("Failed to register cleanup job", zap.Error(err))
		}
	}
	sched.Start()
	defer sched.Stop()

	// Serve the API
	handler := api.NewHandler(eng, alerts)
	srv := &http.Server{
		Addr:    cfg.APIAddr,
		Handler: api.NewRouter(handler),
	}
	go func() {
		logger.Info("API listening", zap.String("addr", cfg.APIAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API shutdown incomplete", zap.Error(err))
	}

	logger.Info("Server shutting down gracefully")
}
