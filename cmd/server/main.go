package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/internal/database"
	"github.com/Dias221467/Questline/internal/jobs"
	"github.com/Dias221467/Questline/internal/scheduler"
	"github.com/Dias221467/Questline/internal/server"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Log.Info("Logger initialized")
	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, db, closeStores, err := server.Open(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open stores")
	}
	defer closeStores()

	if db != nil {
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Log.WithError(err).Fatal("Failed to ensure indexes")
		}
	}
	if _, err := app.Achievements.SeedDefaults(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to seed achievements")
	}

	cron, err := scheduler.Start(cfg.ReminderCron, cfg.SweepCron,
		jobs.NewCheckInReminder(app.Notifications),
		jobs.NewAchievementSweep(app.Users, app.Achievements),
	)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to start cron jobs")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
	app.Hub.Close()
	<-cron.Stop().Done()
	logger.Log.Info("Server stopped")
}
