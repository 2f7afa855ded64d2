package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/database"
	"finance-tracker-go/internal/logging"
	"finance-tracker-go/internal/service"
	"finance-tracker-go/internal/store"
)

// runTimeout bounds a single generation pass.
const runTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load(".env")

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}
	logger.Info("starting recurring-worker")

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := service.New(store.New(db), tokens, logger, cfg.DefaultCurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run := func() {
		runCtx, done := context.WithTimeout(ctx, runTimeout)
		defer done()
		start := time.Now()
		count, err := svc.GenerateAll(runCtx, start)
		entry := logger.WithFields(logrus.Fields{"generated": count, "elapsed_ms": time.Since(start).Milliseconds()})
		if err != nil {
			entry.WithError(err).Error("recurring generation failed")
			return
		}
		entry.Info("recurring generation complete")
	}

	// Catch up on anything due since the last run before waiting for the schedule.
	run()

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cfg.RecurringSchedule, run); err != nil {
		logger.WithError(err).Fatal("invalid RECURRING_SCHEDULE")
	}
	c.Start()
	logger.WithField("schedule", cfg.RecurringSchedule).Info("recurring schedule armed")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.WithField("signal", sig.String()).Info("shutting down")

	cancel()
	<-c.Stop().Done()
}
