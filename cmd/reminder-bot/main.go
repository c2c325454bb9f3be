package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-planner/internal/config"
	"recipe-planner/internal/database"
	"recipe-planner/internal/notify"
	"recipe-planner/internal/planner"
)

// reminder-bot polls planned meals and pushes a Telegram reminder on
// the morning of each meal's day. It runs separately from the API so a
// restart of one never drops the other.
func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.TelegramBotToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required for the reminder bot")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	sender, err := notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		logger.Fatal("Failed to create Telegram sender", zap.Error(err))
	}

	planRepo := planner.NewRepository(db.SQL)
	reminder := notify.NewReminder(planRepo, sender, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down reminder bot...")
		cancel()
	}()

	logger.Info("Reminder bot started")
	if err := reminder.Run(ctx, 15*time.Minute); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Reminder bot failed", zap.Error(err))
	}
	logger.Info("Reminder bot exiting")
}
