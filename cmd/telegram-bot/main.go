package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"recipe-book/internal/app"
	"recipe-book/internal/clipper"
	"recipe-book/internal/config"
	"recipe-book/internal/database"
	"recipe-book/internal/forkify"
	"recipe-book/internal/metrics"
	"recipe-book/internal/state"
	"recipe-book/internal/storage"
	"recipe-book/internal/telegram"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if cfg.TelegramAllowUserID == 0 {
		log.Fatal("TELEGRAM_ALLOW_USER_ID environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Infrastructure
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	var (
		persist  storage.Store
		dataPath string
	)
	if cfg.StorageBackend == "sqlite" {
		persist = storage.NewSQLiteStore(db.SQL)
		dataPath = cfg.DatabasePath
	} else {
		fileStore, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		persist = fileStore
		dataPath = fileStore.Dir()
	}

	// 3. Initialize Services
	gateway := forkify.NewClient(cfg, forkify.WithObserver(metricsStore.Observe))
	store := state.New(gateway, persist, cfg.ResultsPerPage)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to restore state: %v", err)
	}
	application := app.NewApp(store, clipper.NewClipper(nil), metricsStore, dataPath)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}
	if cfg.TelegramWebhookURL == "" {
		log.Println("No webhook configured, polling for updates")
		go bot.Run(ctx)
	}

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: bot.Routes(),
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	bot.Wait()

	log.Println("Server exiting")
}
