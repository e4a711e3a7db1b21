package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// NotConnectedError creates an error for schema operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for failed GORM initialization.
func GORMConnectionError(err error) error {
	msg := "Cannot initialize GORM over the existing connection pool"

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("gorm connection failed: %w", err),
	}
}

// CreateSchemaError creates an error for failed schema creation.
func CreateSchemaError(err error) error {
	msg := "Cannot create database schema"

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("schema creation failed: %w", err),
	}
}

// MigrateSchemaError creates an error for failed schema migration.
func MigrateSchemaError(err error) error {
	msg := "Cannot migrate database schema"

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("schema migration failed: %w", err),
	}
}

// CollationError creates an error for a failed collation change.
func CollationError(table, column string, err error) error {
	msg := "Cannot set collation on <em>%s.%s</em>"
	vars := []any{table, column}

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"cannot set collation on %s.%s: %w", table, column, err),
	}
}
