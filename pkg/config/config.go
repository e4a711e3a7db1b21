// Package config provides configuration management for GNfacet.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use GNFACET_ prefix with underscores for nesting:
//
//	GNFACET_DATABASE_HOST=localhost
//	GNFACET_DATABASE_PORT=5432
//	GNFACET_SERVER_PORT=8606
//	GNFACET_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete GNfacet configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Server contains HTTP API settings.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Ingest contains settings for the taxonomy ingestion pipeline.
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`

	// Classify contains settings for the AI classifier gateway.
	Classify ClassifyConfig `mapstructure:"classify" yaml:"classify"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Scope selects the active facet vocabulary overlay. Empty string is
	// the global default scope. Scope is threaded explicitly through
	// registry, row-builder and query-compiler calls.
	Scope string `mapstructure:"scope" yaml:"scope"`

	// JobsNumber is the number of concurrent workers for parallel
	// operations. Default value is set according to the number of
	// available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	// Port is the TCP port the search API listens on.
	Port int `mapstructure:"port" yaml:"port"`

	// PerPageDefault is the number of search results per page when the
	// client does not ask for a specific page size.
	PerPageDefault int `mapstructure:"per_page_default" yaml:"per_page_default"`

	// PerPageMax caps the page size a client may request.
	PerPageMax int `mapstructure:"per_page_max" yaml:"per_page_max"`
}

// IngestConfig contains settings for the taxonomy ingestion pipeline.
type IngestConfig struct {
	// SourceURL is the base URL of the external taxonomy source.
	// Records are fetched from {SourceURL}/{id}.
	SourceURL string `mapstructure:"source_url" yaml:"source_url"`

	// BatchSize bounds how many pending children a single
	// process-pending run may handle.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// ParentScanLimit bounds how many parents with pending children are
	// examined per batch run.
	ParentScanLimit int `mapstructure:"parent_scan_limit" yaml:"parent_scan_limit"`

	// RequestsPerSec throttles calls to the external taxonomy source.
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`

	// RootID is the external id of the subtree to initialize.
	// Runtime-only, set by the ingest command.
	RootID int64
}

// ClassifyConfig contains settings for the AI classifier gateway.
type ClassifyConfig struct {
	// Model is the Anthropic model used for facet classification.
	Model string `mapstructure:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in config files.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gnfacet",
			SSLMode:  "disable",
		},
		Server: ServerConfig{
			Port:           8606,
			PerPageDefault: 24,
			PerPageMax:     48,
		},
		Ingest: IngestConfig{
			SourceURL:       "https://api.inaturalist.org/v1/taxa",
			BatchSize:       200,
			ParentScanLimit: 50,
			RequestsPerSec:  1,
		},
		Classify: ClassifyConfig{
			Model:     "claude-3-5-haiku-latest",
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
