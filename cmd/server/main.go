/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the team portal server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment
  2. Build the structured logger
  3. Initialize SQLite store (seeding bookmarks if configured)
  4. Wire the booking ledger and health monitor
  5. Start server with graceful shutdown

ENVIRONMENT:
  PORT                   HTTP server port (default: 3000)
  DB_PATH                SQLite database path (default: portal.db)
                         Use ":memory:" for an in-memory database
  LOG_LEVEL              trace|debug|info|warn|error (default: info)
  LOG_PRETTY             Human-friendly console output (default: false)
  CORS_ORIGINS           Comma-separated allowed origins (default: *)
  BOOKMARKS_SEED         Optional JSON file seeding an empty bookmarks table
  HEALTH_PROBE_TIMEOUT   Per-server probe timeout (default: 5s)
  HEALTH_ALERT_COOLDOWN  Down-alert throttle window (default: 1h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - calendar/ledger.go: Booking admission
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskhub/team-portal/api"
	"github.com/deskhub/team-portal/calendar"
	"github.com/deskhub/team-portal/config"
	"github.com/deskhub/team-portal/health"
	"github.com/deskhub/team-portal/logger"
	"github.com/deskhub/team-portal/store/sqlite"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	if cfg.BookmarksSeed != "" {
		if err := seedBookmarks(ctx, store, cfg.BookmarksSeed); err != nil {
			log.Warn().Err(err).Str("path", cfg.BookmarksSeed).Msg("bookmark seeding failed")
		}
	}

	ledger := calendar.NewLedger(store)
	monitor := health.NewMonitor(
		store,
		health.LogNotifier{Log: log.With().Str("component", "health").Logger()},
		cfg.Health.AlertCooldown,
		log.With().Str("component", "health").Logger(),
		health.WithClient(&http.Client{Timeout: cfg.Health.ProbeTimeout}),
	)

	handler := api.NewHandler(store, ledger, monitor, log.With().Str("component", "api").Logger())
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// seedBookmarks loads a JSON catalog into an empty bookmarks table. A table
// with existing rows is left untouched.
func seedBookmarks(ctx context.Context, store *sqlite.Store, path string) error {
	count, err := store.CountBookmarks(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []struct {
		Category         string `json:"category"`
		ShortDescription string `json:"short_description"`
		LongDescription  string `json:"long_description"`
		Link             string `json:"link"`
		Icon             string `json:"icon"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, e := range entries {
		b := sqlite.Bookmark{
			Category:         e.Category,
			ShortDescription: e.ShortDescription,
			LongDescription:  e.LongDescription,
			Link:             e.Link,
			Icon:             e.Icon,
		}
		if _, err := store.InsertBookmark(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
