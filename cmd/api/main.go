package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-planner/internal/api"
	"recipe-planner/internal/assistant"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/config"
	"recipe-planner/internal/database"
	"recipe-planner/internal/notify"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/provider"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/storage"
)

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

	ctx := context.Background()

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	recipeStore := recipe.NewStore(db.SQL)
	planRepo := planner.NewRepository(db.SQL)
	userStore := auth.NewUserStore(db.SQL)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	session := auth.NewSession()

	imageStore, err := storage.NewImageStore(cfg.ImagePath, cfg.PublicBaseURL+"/images")
	if err != nil {
		logger.Fatal("Failed to initialize image store", zap.Error(err))
	}

	edamam := provider.NewEdamamClient(cfg.EdamamAppID, cfg.EdamamAppKey, cfg.EdamamAccountUser)
	spoonacular := provider.NewSpoonacularClient(cfg.SpoonacularAPIKey)
	mealdb := provider.NewMealDBClient()

	var textGen assistant.TextGenerator
	if cfg.GeminiAPIKey != "" {
		textGen, err = assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant and clipper disabled")
	}

	var scheduler *notify.Scheduler
	if cfg.TelegramBotToken != "" {
		sender, err := notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Fatal("Failed to create Telegram sender", zap.Error(err))
		}
		scheduler = notify.NewScheduler(sender, logger)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, meal notifications disabled")
	}

	handler := api.NewHandler(
		logger,
		edamam, spoonacular, mealdb,
		recipeStore, planRepo,
		userStore, jwtManager, session,
		imageStore,
		textGen, scheduler,
	)
	router := api.NewRouter(handler, logger, cfg.CORSAllowedOrigins, imageStore.BasePath())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("API server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
