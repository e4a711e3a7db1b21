package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// ConnectionError creates an error for failed database connections.
func ConnectionError(
	host string, port int, database, user string, err error,
) error {
	msg := `Cannot connect to PostgreSQL

<em>Host:</em> %s:%d
<em>Database:</em> %s
<em>User:</em> %s

<em>How to fix:</em>
  1. Check that PostgreSQL is running
  2. Verify connection settings in config.yaml
  3. Check GNFACET_DATABASE_* environment variables`

	vars := []any{host, port, database, user}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot connect to postgres: %w", err),
	}
}

// NotConnectedError creates an error for operations attempted without
// a database connection.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// PingError creates an error for a failed connectivity check.
func PingError(err error) error {
	msg := "Database did not respond to ping"

	return &gn.Error{
		Code: errcode.DBPingError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("database ping failed: %w", err),
	}
}

// QueryError creates an error for a failed catalog/system query.
func QueryError(op string, err error) error {
	msg := "Database query failed during %s"
	vars := []any{op}

	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}

// DropTableError creates an error for a failed DROP TABLE.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot drop table %s: %w", table, err),
	}
}
