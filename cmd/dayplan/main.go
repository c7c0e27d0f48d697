package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kerhoff/dayplan/internal/api"
	"github.com/Kerhoff/dayplan/internal/config"
	"github.com/Kerhoff/dayplan/internal/metrics"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/repository/memory"
	"github.com/Kerhoff/dayplan/internal/repository/postgres"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
	"github.com/Kerhoff/dayplan/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting Dayplan...")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	var store repository.Store
	switch cfg.Storage {
	case config.StorageMemory:
		l.Warn("Using in-memory storage; nothing survives a restart")
		store = memory.New()
	default:
		db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
		if err != nil {
			l.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			l.Fatalf("Failed to run migrations: %v", err)
		}
		store = postgres.NewStore(db.DB)
	}

	// Service layer
	m := metrics.New()
	svc := service.New(store, l, service.WithMetrics(m))

	// HTTP API
	apiServer := api.NewServer(svc, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Prometheus
	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", m.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		l.Infof("Metrics listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// Telegram bot and reminders
	if cfg.TelegramToken == "" {
		l.Warn("TELEGRAM_TOKEN is not set; running without the bot and reminders")
	} else {
		bot, err := telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		registerCommands(bot, svc, l)

		go svc.StartReminderScheduler(ctx, cfg.ReminderInterval, bot.Notify)

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	l.Info("Dayplan started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	l.Info("Shutting down HTTP servers...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown: %v", err)
	}

	l.Info("Dayplan stopped")
}
