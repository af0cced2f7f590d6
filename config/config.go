package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, Postgres connection details, and the two venue connectors.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=volpulse
//	POSTGRES_SSLMODE=disable
//	WOOX_BASE_URL=https://api.woo.org
//	PARADEX_BASE_URL=https://api.prod.paradex.trade/v1
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Woox     VenueConfig    // Woox connector settings
	Paradex  VenueConfig    // Paradex connector settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8080")
	RequestTimeout time.Duration // Overall per-request deadline applied by the router
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// VenueConfig holds per-venue connector settings.
//
// The placeholder credentials are what the aggregator injects when the
// credential store has no entry for the venue. They are intentionally not
// real key material: the connector is expected to fail its authenticated
// tiers with them and degrade to public estimation. The original system
// embedded real fallback keys as literals; here they must come from the
// environment or stay as inert placeholders.
//
// PublicScale is the venue-specific multiplier applied to the public-tier
// 24h estimate. It is an inherited heuristic (Woox uses 10 to extrapolate
// three sampled markets to the whole exchange) and makes no accuracy claim.
type VenueConfig struct {
	BaseURL            string        // Venue REST base URL
	PublicMarkets      []string      // Markets sampled by the public estimation tier (Woox)
	PublicScale        float64       // Heuristic whole-exchange multiplier for the public tier
	HTTPTimeout        time.Duration // Per-request timeout for the venue HTTP client
	PlaceholderAPIKey  string        // Injected when the credential store has no entry
	PlaceholderSecret  string
	PlaceholderToken   string
	SyntheticFallback  bool    // If true, the terminal tier emits a pseudo-random placeholder volume
	FallbackCeilingUSD float64 // Upper bound for the synthetic placeholder
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all required fields.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Constructs the PostgreSQL connection string (DSN).
//   - Calls validateConfig() to ensure required fields are present.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "volpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("WOOX_BASE_URL", "https://api.woo.org")
	viper.SetDefault("WOOX_PUBLIC_MARKETS", "SPOT_BTC_USDT,SPOT_ETH_USDT,PERP_BTC_USDT")
	viper.SetDefault("WOOX_PUBLIC_SCALE", 10.0)
	viper.SetDefault("WOOX_HTTP_TIMEOUT", "10s")
	viper.SetDefault("WOOX_PLACEHOLDER_API_KEY", "public")
	viper.SetDefault("WOOX_PLACEHOLDER_API_SECRET", "public")
	viper.SetDefault("WOOX_FALLBACK_CEILING_USD", 1000000.0)

	viper.SetDefault("PARADEX_BASE_URL", "https://api.prod.paradex.trade/v1")
	viper.SetDefault("PARADEX_PUBLIC_SCALE", 1.0)
	viper.SetDefault("PARADEX_HTTP_TIMEOUT", "10s")
	viper.SetDefault("PARADEX_PLACEHOLDER_TOKEN", "public")
	viper.SetDefault("PARADEX_FALLBACK_CEILING_USD", 500000.0)

	viper.SetDefault("FALLBACK_SYNTHETIC", false)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Woox: VenueConfig{
			BaseURL:            viper.GetString("WOOX_BASE_URL"),
			PublicMarkets:      splitList(viper.GetString("WOOX_PUBLIC_MARKETS")),
			PublicScale:        viper.GetFloat64("WOOX_PUBLIC_SCALE"),
			HTTPTimeout:        viper.GetDuration("WOOX_HTTP_TIMEOUT"),
			PlaceholderAPIKey:  viper.GetString("WOOX_PLACEHOLDER_API_KEY"),
			PlaceholderSecret:  viper.GetString("WOOX_PLACEHOLDER_API_SECRET"),
			SyntheticFallback:  viper.GetBool("FALLBACK_SYNTHETIC"),
			FallbackCeilingUSD: viper.GetFloat64("WOOX_FALLBACK_CEILING_USD"),
		},
		Paradex: VenueConfig{
			BaseURL:            viper.GetString("PARADEX_BASE_URL"),
			PublicScale:        viper.GetFloat64("PARADEX_PUBLIC_SCALE"),
			HTTPTimeout:        viper.GetDuration("PARADEX_HTTP_TIMEOUT"),
			PlaceholderToken:   viper.GetString("PARADEX_PLACEHOLDER_TOKEN"),
			SyntheticFallback:  viper.GetBool("FALLBACK_SYNTHETIC"),
			FallbackCeilingUSD: viper.GetFloat64("PARADEX_FALLBACK_CEILING_USD"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	// Validate critical fields
	validateConfig()
}

// splitList parses a comma-separated env value into a trimmed slice,
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if AppConfig.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if AppConfig.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if AppConfig.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if AppConfig.Woox.BaseURL == "" {
		missing = append(missing, "WOOX_BASE_URL")
	}
	if AppConfig.Paradex.BaseURL == "" {
		missing = append(missing, "PARADEX_BASE_URL")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
