package ioingest

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// SourceError creates an error for a failed request to the external
// taxonomy source.
func SourceError(extID int64, err error) error {
	msg := "Cannot fetch record <em>%d</em> from the taxonomy source"
	vars := []any{extID}

	return &gn.Error{
		Code: errcode.IngestSourceError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot fetch record %d: %w", extID, err),
	}
}

// DecodeError creates an error for an unparseable source response.
func DecodeError(extID int64, err error) error {
	msg := "Cannot decode source response for record <em>%d</em>"
	vars := []any{extID}

	return &gn.Error{
		Code: errcode.IngestDecodeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"cannot decode source response for record %d: %w", extID, err),
	}
}

// EmptyEnvelopeError creates an error for a source response without
// any records.
func EmptyEnvelopeError(extID int64) error {
	msg := "Taxonomy source returned no records for id <em>%d</em>"
	vars := []any{extID}

	return &gn.Error{
		Code: errcode.IngestSourceError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no records returned for id %d", extID),
	}
}

// CacheError creates an error for a failed response-cache operation.
func CacheError(operation string, err error) error {
	msg := "Source cache operation <em>%s</em> failed"
	vars := []any{operation}

	return &gn.Error{
		Code: errcode.IngestCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cache %s failed: %w", operation, err),
	}
}
