package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptServerPort sets the TCP port of the search API.
func OptServerPort(i int) Option {
	return func(c *Config) {
		if isValidInt("Server Port", i) {
			c.Server.Port = i
		}
	}
}

// OptServerPerPageDefault sets the default search page size.
func OptServerPerPageDefault(i int) Option {
	return func(c *Config) {
		if isValidInt("Per-Page Default", i) {
			c.Server.PerPageDefault = i
		}
	}
}

// OptServerPerPageMax sets the maximum search page size.
func OptServerPerPageMax(i int) Option {
	return func(c *Config) {
		if isValidInt("Per-Page Max", i) {
			c.Server.PerPageMax = i
		}
	}
}

// OptIngestSourceURL sets the base URL of the external taxonomy source.
func OptIngestSourceURL(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/")
	return func(c *Config) {
		if isValidString("Ingest Source URL", s) {
			c.Ingest.SourceURL = s
		}
	}
}

// OptIngestBatchSize bounds pending children processed per batch run.
func OptIngestBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Ingest Batch Size", i) {
			c.Ingest.BatchSize = i
		}
	}
}

// OptIngestParentScanLimit bounds parents examined per batch run.
func OptIngestParentScanLimit(i int) Option {
	return func(c *Config) {
		if isValidInt("Ingest Parent Scan Limit", i) {
			c.Ingest.ParentScanLimit = i
		}
	}
}

// OptIngestRequestsPerSec throttles external taxonomy source calls.
func OptIngestRequestsPerSec(f float64) Option {
	return func(c *Config) {
		if f > 0 {
			c.Ingest.RequestsPerSec = f
		}
	}
}

// OptIngestRootID sets the external id of the subtree to initialize.
// Runtime-only field - not in ToOptions().
func OptIngestRootID(i int64) Option {
	return func(c *Config) {
		if i > 0 {
			c.Ingest.RootID = i
		}
	}
}

// OptClassifyModel sets the Anthropic model used for classification.
func OptClassifyModel(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Classify Model", s) {
			c.Classify.Model = s
		}
	}
}

// OptScope sets the active facet vocabulary scope.
// Empty string means the global default scope, so no validation here.
func OptScope(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Scope = s
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stdout", "stderr".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for parallel
// operations. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
