package main

//
//  @title           volpulse API
//  @version         1.0
//  @description     Multi-venue trading volume aggregation service.
//  @termsOfService  https://github.com/guttosm/volpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/volpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        volume
//  @tag.description Endpoints for querying combined venue volume
//
//  @tag.name        credentials
//  @tag.description Endpoints for managing venue credentials
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/volpulse/config"
	_ "github.com/guttosm/volpulse/docs" // swagger docs
	"github.com/guttosm/volpulse/internal/app"
	"github.com/guttosm/volpulse/internal/connector"
	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/logger"
	"github.com/guttosm/volpulse/internal/service"
	"github.com/guttosm/volpulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runSnapshot performs one aggregation over the full-history window, logs
// the per-venue totals, and persists one snapshot per venue.
func runSnapshot(ctx context.Context) error {
	cfg := config.AppConfig

	db, err := app.InitPostgres(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	credRepo := storage.NewCredentialRepository(db)
	snapRepo := storage.NewSnapshotRepository(db)
	svc := service.NewVolumeService(
		connector.NewWoox(cfg.Woox),
		connector.NewParadex(cfg.Paradex),
		credRepo,
		snapRepo,
		app.DefaultCredentials(cfg),
	)

	combined, err := svc.GetCombinedVolume(ctx, models.FullHistoryRange(time.Now().UTC()))
	if err != nil {
		return err
	}

	logger.L().Info().
		Float64("woox_volume_usd", combined.Woox.Result.TotalVolumeUSD).
		Str("woox_source", string(combined.Woox.Result.SourceTier)).
		Float64("paradex_volume_usd", combined.Paradex.Result.TotalVolumeUSD).
		Str("paradex_source", string(combined.Paradex.Result.SourceTier)).
		Time("captured_at", combined.CapturedAt).
		Msg("snapshot run completed")
	return nil
}

// main is the entry point of the volpulse application.
//
// Modes (selected via --mode flag):
//   - api:      Starts the REST API exposing the combined volume endpoint.
//   - snapshot: Runs one aggregation over the full-history window and exits.
//
// Flags:
//   - --mode: Execution mode ("api" or "snapshot"). Default: "api".
//   - --port: Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or snapshot")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "snapshot":
		// One-shot aggregation run
		logger.L().Info().Msg("running snapshot aggregation")
		if err := runSnapshot(ctx); err != nil {
			logger.L().Fatal().Err(err).Msg("snapshot run failed")
		}

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
