package db

import (
	"context"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines the interface for basic database management
// operations. It provides connection lifecycle management and exposes
// the pgxpool.Pool for higher-level components (SchemaManager, Store,
// Rollup) to execute their specialized SQL internally.
//
// Design rationale:
// - Keeps interface minimal to avoid bloat with mixed semantics
// - Pool() enables components to use parameterized bulk SQL directly
// - Schema creation and migration are handled by GORM AutoMigrate via
//   SchemaManager
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool for components to
	// execute specialized SQL operations.
	Pool() *pgxpool.Pool

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// ColumnExists checks if a column exists on a table. Used to
	// detect deployments whose facet_rows table predates the
	// popularity columns, so the popular sort can degrade to
	// title-only ordering instead of failing.
	ColumnExists(ctx context.Context, tableName, columnName string) (bool, error)

	// HasTables checks if the database has any tables in the public
	// schema. Used to decide if schema creation should prompt for
	// confirmation.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	// Used during schema initialization when overwriting existing data.
	DropAllTables(ctx context.Context) error
}
