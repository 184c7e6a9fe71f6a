package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"recipe-book/internal/app"
	"recipe-book/internal/clipper"
	"recipe-book/internal/config"
	"recipe-book/internal/database"
	"recipe-book/internal/forkify"
	"recipe-book/internal/metrics"
	"recipe-book/internal/state"
	"recipe-book/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	if len(os.Args) > 1 && os.Args[1] == "metrics-cleanup" {
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return
	}

	var (
		persist  storage.Store
		dataPath string
	)
	switch cfg.StorageBackend {
	case "sqlite":
		persist = storage.NewSQLiteStore(db.SQL)
		dataPath = cfg.DatabasePath
	default:
		fileStore, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		persist = fileStore
		dataPath = fileStore.Dir()
	}

	gateway := forkify.NewClient(cfg, forkify.WithObserver(metricsStore.Observe))
	store := state.New(gateway, persist, cfg.ResultsPerPage)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to restore state: %v", err)
	}

	application := app.NewApp(store, clipper.NewClipper(nil), metricsStore, dataPath)

	if len(os.Args) > 1 {
		if !run(ctx, application, strings.Join(os.Args[1:], " ")) {
			os.Exit(1)
		}
		return
	}
	repl(ctx, application, os.Stdin, os.Stdout)
}

func run(ctx context.Context, application *app.App, input string) bool {
	out, err := application.Execute(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if out != "" {
		fmt.Println(out)
	}
	return true
}

// repl reads one command per line. /upload collects "key: value" lines until
// a blank line.
func repl(ctx context.Context, application *app.App, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Recipe book ready. Type /help for commands.")
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return
		}
		if strings.HasPrefix(line, "/upload") {
			var body []string
			fmt.Fprintln(out, "Enter key: value lines, finish with a blank line.")
			for scanner.Scan() {
				l := strings.TrimSpace(scanner.Text())
				if l == "" {
					break
				}
				body = append(body, l)
			}
			line = line + "\n" + strings.Join(body, "\n")
		}
		if line != "" {
			run(ctx, application, line)
		}
		fmt.Fprint(out, "> ")
	}
}
