// Package iotesting provides shared helpers for integration tests.
package iotesting

import (
	"os"

	"github.com/gnames/gnfacet/internal/ioconfig"
	"github.com/gnames/gnfacet/pkg/config"
)

// TestDatabaseName is the database used by all integration tests, so
// tests never touch a production catalog.
const TestDatabaseName = "gnfacet_test"

// GetTestConfig loads the standard configuration and overrides the
// database name to the dedicated test database.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test in short mode")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}

	cfg, err := ioconfig.Load(home)
	if err != nil {
		cfg = config.New()
	}
	cfg.HomeDir = home

	// Always use the test database for safety.
	cfg.Database.Database = TestDatabaseName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
