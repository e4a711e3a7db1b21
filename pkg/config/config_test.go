package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnfacet"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gnfacet"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gnfacet", "logs"),
		},
		{
			msg: "facets file",
			fn:  config.FacetsFilePath,
			res: filepath.Join(tempHome, ".config", "gnfacet", "facets.yaml"),
		},
		{
			msg: "source cache file",
			fn:  config.SourceCachePath,
			res: filepath.Join(tempHome, ".cache", "gnfacet", "source.db"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "gnfacet", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)

		assert.Equal(t, 8606, cfg.Server.Port)
		assert.Equal(t, 24, cfg.Server.PerPageDefault)
		assert.Equal(t, 48, cfg.Server.PerPageMax)

		assert.NotEmpty(t, cfg.Ingest.SourceURL)
		assert.Equal(t, 200, cfg.Ingest.BatchSize)
		assert.Equal(t, 50, cfg.Ingest.ParentScanLimit)

		assert.Equal(t, "ANTHROPIC_API_KEY", cfg.Classify.APIKeyEnv)

		assert.Empty(t, cfg.Scope, "global scope by default")
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies valid options", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptDatabaseHost("db.example.org"),
			config.OptServerPort(9000),
			config.OptScope("marine"),
			config.OptLogLevel("debug"),
		})

		assert.Equal(t, "db.example.org", cfg.Database.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "marine", cfg.Scope)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects invalid options, keeps valid state", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptDatabaseHost("  "),
			config.OptServerPort(-1),
			config.OptLogLevel("verbose"),
			config.OptDatabaseSSLMode("maybe"),
		})

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 8606, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
	})

	t.Run("empty scope resets to global", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptScope("marine")})
		cfg.Update([]config.Option{config.OptScope("")})
		assert.Empty(t, cfg.Scope)
	})
}

func TestToOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseHost("pg.internal"),
		config.OptScope("marine"),
		config.OptIngestRootID(3),
		config.OptHomeDir("/home/someone"),
	})

	restored := config.New()
	restored.Update(cfg.ToOptions())

	assert.Equal(t, "pg.internal", restored.Database.Host)
	assert.Equal(t, "marine", restored.Scope)

	// runtime-only fields do not round-trip
	assert.Zero(t, restored.Ingest.RootID)
	assert.Empty(t, restored.HomeDir)
}
