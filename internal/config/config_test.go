package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		setEnv("PORT", "9090")
		setEnv("EDAMAM_APP_ID", "app-id")
		setEnv("SPOONACULAR_API_KEY", "spoon-key")
		setEnv("TELEGRAM_CHAT_ID", "12345")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
		}
		if cfg.EdamamAppID != "app-id" {
			t.Errorf("Expected EdamamAppID to be 'app-id', got '%s'", cfg.EdamamAppID)
		}
		if cfg.SpoonacularAPIKey != "spoon-key" {
			t.Errorf("Expected SpoonacularAPIKey to be 'spoon-key', got '%s'", cfg.SpoonacularAPIKey)
		}
		if cfg.TelegramChatID != 12345 {
			t.Errorf("Expected TelegramChatID to be 12345, got %d", cfg.TelegramChatID)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		os.Unsetenv("PORT")
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("CORS_ALLOWED_ORIGINS")
		os.Unsetenv("TELEGRAM_CHAT_ID")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
		}
		if cfg.DatabasePath != "data/app.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:8081" {
			t.Errorf("Expected default CORS origins, got %v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		os.Unsetenv("JWT_SECRET")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing JWT_SECRET, got nil")
		}
		expectedError := "JWT_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidTelegramChatID", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		setEnv("TELEGRAM_CHAT_ID", "not-a-number")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_CHAT_ID, got nil")
		}
	})
}
