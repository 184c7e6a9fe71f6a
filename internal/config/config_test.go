package config

import (
	"os"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv("FORKIFY_API_KEY", "forkify_key")
		setEnv("FORKIFY_API_URL", "")
		setEnv("RESULTS_PER_PAGE", "")
		setEnv("STORAGE_BACKEND", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.ForkifyAPIKey != "forkify_key" {
			t.Errorf("Expected ForkifyAPIKey to be 'forkify_key', got '%s'", cfg.ForkifyAPIKey)
		}
		if cfg.ForkifyAPIURL != DefaultAPIURL {
			t.Errorf("Expected default API URL, got '%s'", cfg.ForkifyAPIURL)
		}
		if cfg.ResultsPerPage != 10 {
			t.Errorf("Expected 10 results per page, got %d", cfg.ResultsPerPage)
		}
		if cfg.RequestTimeout != 10*time.Second {
			t.Errorf("Expected 10s timeout, got %v", cfg.RequestTimeout)
		}
		if cfg.StorageBackend != "file" {
			t.Errorf("Expected file backend, got '%s'", cfg.StorageBackend)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		setEnv("FORKIFY_API_KEY", "forkify_key")
		setEnv("FORKIFY_API_URL", "http://api.test/recipes/")
		setEnv("RESULTS_PER_PAGE", "5")
		setEnv("STORAGE_BACKEND", "sqlite")
		setEnv("TELEGRAM_ALLOW_USER_ID", "42")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.ForkifyAPIURL != "http://api.test/recipes/" {
			t.Errorf("Expected overridden URL, got '%s'", cfg.ForkifyAPIURL)
		}
		if cfg.ResultsPerPage != 5 {
			t.Errorf("Expected 5 results per page, got %d", cfg.ResultsPerPage)
		}
		if cfg.StorageBackend != "sqlite" {
			t.Errorf("Expected sqlite backend, got '%s'", cfg.StorageBackend)
		}
		if cfg.TelegramAllowUserID != 42 {
			t.Errorf("Expected allowed user 42, got %d", cfg.TelegramAllowUserID)
		}
	})

	t.Run("InvalidPageSizeFallsBack", func(t *testing.T) {
		setEnv("FORKIFY_API_KEY", "forkify_key")
		setEnv("RESULTS_PER_PAGE", "0")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.ResultsPerPage != DefaultResultsPerPage {
			t.Errorf("Expected default page size, got %d", cfg.ResultsPerPage)
		}
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		setEnv("FORKIFY_API_KEY", "forkify_key")
		setEnv("STORAGE_BACKEND", "redis")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for an unknown storage backend")
		}
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		setEnv("FORKIFY_API_KEY", "")
		os.Unsetenv("FORKIFY_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing FORKIFY_API_KEY, got nil")
		}
		expectedError := "FORKIFY_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}
