package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultAPIURL         = "https://forkify-api.herokuapp.com/api/v2/recipes/"
	DefaultResultsPerPage = 10
	DefaultTimeoutSec     = 10
)

// Config holds the configuration for the application.
type Config struct {
	ForkifyAPIURL   string
	ForkifyAPIKey   string
	ForkifyAdminKey string
	ResultsPerPage  int
	RequestTimeout  time.Duration

	// Persistence
	StorageBackend string
	StoragePath    string
	DatabasePath   string

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
	Port                string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiKey := os.Getenv("FORKIFY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("FORKIFY_API_KEY environment variable not set")
	}

	backend := getEnv("STORAGE_BACKEND", "file")
	if backend != "file" && backend != "sqlite" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be 'file' or 'sqlite', got %q", backend)
	}

	// Telegram Config (Optional for CLI, required for Bot)
	var telegramAllowUserID int64
	if raw := os.Getenv("TELEGRAM_ALLOW_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOW_USER_ID must be numeric: %w", err)
		}
		telegramAllowUserID = id
	}

	return &Config{
		ForkifyAPIURL:       getEnv("FORKIFY_API_URL", DefaultAPIURL),
		ForkifyAPIKey:       apiKey,
		ForkifyAdminKey:     os.Getenv("FORKIFY_ADMIN_KEY"),
		ResultsPerPage:      getPositiveIntEnv("RESULTS_PER_PAGE", DefaultResultsPerPage),
		RequestTimeout:      time.Duration(getPositiveIntEnv("REQUEST_TIMEOUT_SEC", DefaultTimeoutSec)) * time.Second,
		StorageBackend:      backend,
		StoragePath:         getEnv("STORAGE_PATH", "data/state"),
		DatabasePath:        getEnv("DATABASE_PATH", "data/recipe-book.db"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:  os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowUserID: telegramAllowUserID,
		Port:                getEnv("PORT", "8080"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}
