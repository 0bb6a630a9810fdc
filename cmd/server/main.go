/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the DinoTrack stay compliance server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the zap logger
  3. Initialize SQLite store
  4. Load the policy catalog (built-in table + optional JSON document)
  5. Configure HTTP router with metrics
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080, env PORT)
  -db        SQLite database path (default: dinotrack.db, env DB_PATH)
             Use ":memory:" for an in-memory database
  -policies  Optional JSON policy document overlaid on the built-in
             catalog (env POLICY_FILE)
  -env       Runtime environment: development or production (env APP_ENV)
  -log-level Log level: debug, info, warn, error (env LOG_LEVEL)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/dinotrack.db"

  # Run with a custom policy document
  ./server -policies="./policies.json"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - policy/catalog.go: Built-in policy table
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/taco0513/dinotrack/api"
	"github.com/taco0513/dinotrack/logging"
	"github.com/taco0513/dinotrack/policy"
	"github.com/taco0513/dinotrack/store/sqlite"
)

func main() {
	// .env is optional; flags still win over the environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "dinotrack.db"), "SQLite database path")
	policyFile := flag.String("policies", envStr("POLICY_FILE", ""), "JSON policy document overlaid on the built-in catalog")
	env := flag.String("env", envStr("APP_ENV", "development"), "Runtime environment (development|production)")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	flag.Parse()

	logger, err := logging.New(*env, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Load the policy catalog
	catalog := policy.Builtin()
	if *policyFile != "" {
		data, err := os.ReadFile(*policyFile)
		if err != nil {
			logger.Fatal("Failed to read policy document", zap.String("file", *policyFile), zap.Error(err))
		}
		catalog, err = policy.NewFactory().ParseCatalog(data, policy.Builtin())
		if err != nil {
			logger.Fatal("Failed to parse policy document", zap.String("file", *policyFile), zap.Error(err))
		}
		logger.Info("Loaded policy document", zap.String("file", *policyFile))
	}

	// Wire the HTTP layer
	handler := api.NewHandler(store, catalog, logger)
	metrics := api.NewMetrics()
	router := api.NewRouter(handler, metrics, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.Int("port", *port),
			zap.String("env", *env),
			zap.Int("countries", len(catalog.Countries())))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
