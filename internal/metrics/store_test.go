package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-book/internal/database"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := NewStore(db.SQL)

	store.Observe("fetch recipe", 120*time.Millisecond, nil)
	store.Observe("search recipes", 80*time.Millisecond, errors.New("boom"))
	if err := store.Record(ctx, GatewayCall{
		Operation: "fetch recipe",
		LatencyMS: 10,
		Timestamp: time.Now().UTC().AddDate(0, 0, -30),
	}); err != nil {
		t.Fatalf("Failed to record: %v", err)
	}

	t.Run("DailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		if usage[0].Calls != 2 || usage[0].Failures != 1 {
			t.Errorf("Expected 2 calls and 1 failure, got %+v", usage[0])
		}
		if usage[0].AvgLatencyMS != 100 {
			t.Errorf("Expected average latency 100ms, got %d", usage[0].AvgLatencyMS)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := store.Cleanup(ctx, 7)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 old row removed, got %d", n)
		}
	})
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bookmarks.json"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	h := GetSysHealth(dir)
	if h.DataSize != "2.0 kB" {
		t.Errorf("Expected data size '2.0 kB', got '%s'", h.DataSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}
}
