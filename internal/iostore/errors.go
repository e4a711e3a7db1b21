package iostore

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// NotConnectedError creates an error for store operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Store operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryError creates an error for a failed store statement.
func QueryError(operation string, err error) error {
	msg := "Database operation <em>%s</em> failed"
	vars := []any{operation}

	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s failed: %w", operation, err),
	}
}

// SearchError creates an error for a failed search query.
func SearchError(err error) error {
	msg := "Search query failed"

	return &gn.Error{
		Code: errcode.SearchQueryError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("search query failed: %w", err),
	}
}

// RollupQueryError creates an error for a failed popularity rollup.
func RollupQueryError(err error) error {
	msg := "Popularity rollup failed"

	return &gn.Error{
		Code: errcode.RollupError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("popularity rollup failed: %w", err),
	}
}

// EncodePendingError creates an error for an unmarshalable
// pending-children queue.
func EncodePendingError(err error) error {
	msg := "Cannot encode pending children"

	return &gn.Error{
		Code: errcode.IngestStoreError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot encode pending children: %w", err),
	}
}

// DecodePendingError creates an error for a corrupt pending-children
// column.
func DecodePendingError(taxonID int64, err error) error {
	msg := "Corrupt pending children on taxon <em>%d</em>"
	vars := []any{taxonID}

	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"corrupt pending children on taxon %d: %w", taxonID, err),
	}
}
