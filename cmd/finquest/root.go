package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hyperengineering/finquest/internal/advisor"
	"github.com/hyperengineering/finquest/internal/api"
	"github.com/hyperengineering/finquest/internal/banking"
	"github.com/hyperengineering/finquest/internal/config"
	"github.com/hyperengineering/finquest/internal/events"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/tracker"
	"github.com/hyperengineering/finquest/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var (
	dbPathOverride string
	jsonOutput     bool
)

var rootCmd = &cobra.Command{
	Use:   "finquest",
	Short: "FinQuest - savings goals and spending streaks",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathOverride, "db", "",
		"Database path (overrides config and FINQUEST_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")

	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(resetCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	// 5. Initialize event publisher
	pub, err := newPublisher(cfg.Events)
	if err != nil {
		db.Close()
		return err
	}
	slog.Info("publisher initialized", "nats", cfg.Events.URL != "", "prefix", cfg.Events.Prefix)

	// 6. Load tracker state
	tr, err := tracker.New(ctx, db, tracker.Options{Publisher: pub})
	if err != nil {
		pub.Close()
		db.Close()
		return err
	}
	goals, streaks, day := tr.Stats()
	slog.Info("tracker loaded", "goals", goals, "streaks", streaks, "day", day)

	// 7. Initialize recommendation generator
	gen := newAdvisor(cfg.Advisor)
	slog.Info("advisor initialized", "model", gen.ModelName())

	// 8. Initialize HTTP router
	handler := api.NewHandler(tr, gen, banking.DemoFetcher{}, banking.NewKeywordClassifier(), Version)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigin: cfg.Server.CORSOrigin,
		APIKey:     cfg.Auth.APIKey,
		CustomerID: cfg.Auth.CustomerID,
	})
	slog.Info("router initialized")

	// 9. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 10. Workers
	var wg sync.WaitGroup
	if interval := time.Duration(cfg.Clock.AutoAdvanceInterval); interval > 0 {
		startWorker(ctx, &wg, "day-advance", worker.NewDayAdvanceWorker(tr, interval).Run)
	}

	// 11. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 12. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 13. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 13a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 13b. Wait for workers to complete
	wg.Wait()

	// 13c. Flush events, then close store
	if err := pub.Close(); err != nil {
		slog.Error("publisher close error", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// loadConfig loads configuration and applies the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPathOverride != "" {
		cfg.Database.Path = dbPathOverride
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newPublisher connects to NATS when a URL is configured.
func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		return events.NoopPublisher{}, nil
	}
	return events.NewNATSPublisher(cfg.URL, cfg.Prefix)
}

// newAdvisor wraps the OpenAI generator in the built-in fallback. Without
// an API key only the built-in recommendations are served.
func newAdvisor(cfg config.AdvisorConfig) advisor.Generator {
	if cfg.APIKey == "" {
		return advisor.WithFallback(nil)
	}
	return advisor.WithFallback(advisor.NewOpenAI(cfg.APIKey, cfg.Model, time.Duration(cfg.Timeout)))
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
