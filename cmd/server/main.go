/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the labor engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load environment configuration (.env supported)
  3. Initialize SQLite store
  4. Create the scheduling API client
  5. Create API handler with dependencies
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT env var)
  -db      SQLite database path (overrides DB_PATH env var)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  SEVEN_SHIFTS_API_KEY      Required. Scheduling API bearer token.
  SEVEN_SHIFTS_COMPANY_ID   Required. Company scope for API calls.
  SEVEN_SHIFTS_LOCATION_ID  Optional default location filter.
  PORT, DB_PATH             Server port and database path.
  BUSINESS_HOUR_START/END   Dashboard hour window (default 7-22).

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Environment loading
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bafang/labor-engine/api"
	"github.com/bafang/labor-engine/config"
	"github.com/bafang/labor-engine/sevenshifts"
	"github.com/bafang/labor-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Scheduling API client
	client := sevenshifts.New(cfg.SevenShiftsAPIKey, cfg.SevenShiftsCompanyID)

	// Initialize handler
	handler := api.NewHandler(store, client, client)
	handler.BusinessHourStart = cfg.BusinessHourStart
	handler.BusinessHourEnd = cfg.BusinessHourEnd
	handler.DefaultLocationID = cfg.SevenShiftsLocationID

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Port)
		log.Printf("📊 API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
