package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/volpulse/config"
	"github.com/guttosm/volpulse/internal/api"
	"github.com/guttosm/volpulse/internal/connector"
	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/service"
	"github.com/guttosm/volpulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (credentials + snapshots).
//   - Builds the two venue connectors from configuration.
//   - Creates the aggregation and credential services.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// Initialize repository layer (responsible for DB access)
	credRepo := storage.NewCredentialRepository(db)
	snapRepo := storage.NewSnapshotRepository(db)

	// Initialize service layer (business logic)
	volumes := service.NewVolumeService(
		connector.NewWoox(cfg.Woox),
		connector.NewParadex(cfg.Paradex),
		credRepo,
		snapRepo,
		DefaultCredentials(cfg),
	)
	creds := service.NewCredentialService(credRepo)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(volumes, creds)

	// Setup Gin router with routes
	router := api.NewRouter(handler, cfg.Server.RequestTimeout)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}

// DefaultCredentials maps the configured placeholder credentials into the
// shape the aggregator injects when the store has no entry for a venue.
func DefaultCredentials(cfg config.Config) service.DefaultCredentials {
	return service.DefaultCredentials{
		Woox: models.Credential{
			Platform:  models.PlatformWoox,
			APIKey:    cfg.Woox.PlaceholderAPIKey,
			APISecret: cfg.Woox.PlaceholderSecret,
		},
		Paradex: models.Credential{
			Platform: models.PlatformParadex,
			Token:    cfg.Paradex.PlaceholderToken,
		},
	}
}
