package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	Port          string
	DatabasePath  string
	ImagePath     string
	PublicBaseURL string

	JWTSecret    string
	JWTExpiresIn string

	// Remote recipe providers
	EdamamAppID       string
	EdamamAppKey      string
	EdamamAccountUser string
	SpoonacularAPIKey string

	// Planning assistant
	GeminiAPIKey string

	// Reminder delivery
	TelegramBotToken string
	TelegramChatID   int64

	CORSAllowedOrigins []string
}

// NewFromEnv creates a new Config object from environment variables,
// loading a .env file first when one is present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	var telegramChatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		telegramChatID = id
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "data/app.db"),
		ImagePath:     getEnv("IMAGE_STORAGE_PATH", "data/images"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		JWTSecret:    jwtSecret,
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "168h"),

		EdamamAppID:       os.Getenv("EDAMAM_APP_ID"),
		EdamamAppKey:      os.Getenv("EDAMAM_APP_KEY"),
		EdamamAccountUser: getEnv("EDAMAM_ACCOUNT_USER", "recipe-planner"),
		SpoonacularAPIKey: os.Getenv("SPOONACULAR_API_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,

		CORSAllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8081"), ","),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
