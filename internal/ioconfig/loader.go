// Package ioconfig provides I/O operations for loading configuration
// from files and environment variables. This is an impure package that
// handles file system operations; the pure configuration logic lives
// in pkg/config.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/spf13/viper"
)

// Load reads configuration from the config.yaml in the home-based
// config directory, with GNFACET_* environment variables taking
// precedence over file values and defaults filling the rest.
// Precedence: flags (applied later by CLI) > env vars > file > defaults.
func Load(homeDir string) (*config.Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(config.ConfigFilePath(homeDir))

	v.SetEnvPrefix("GNFACET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults are registered before reading so AutomaticEnv knows
	// which keys to check even when the file omits them.
	defaults := config.New()
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.per_page_default", defaults.Server.PerPageDefault)
	v.SetDefault("server.per_page_max", defaults.Server.PerPageMax)
	v.SetDefault("ingest.source_url", defaults.Ingest.SourceURL)
	v.SetDefault("ingest.batch_size", defaults.Ingest.BatchSize)
	v.SetDefault("ingest.parent_scan_limit", defaults.Ingest.ParentScanLimit)
	v.SetDefault("ingest.requests_per_sec", defaults.Ingest.RequestsPerSec)
	v.SetDefault("classify.model", defaults.Classify.Model)
	v.SetDefault("classify.api_key_env", defaults.Classify.APIKeyEnv)
	v.SetDefault("scope", defaults.Scope)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.destination", defaults.Log.Destination)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults + env vars take over;
		// a malformed file is not.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var fileCfg config.Config
	if err := v.Unmarshal(&fileCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Round-trip through options so invalid file values are rejected
	// with warnings instead of corrupting the config.
	res := config.New()
	res.Update(fileCfg.ToOptions())

	return res, nil
}
