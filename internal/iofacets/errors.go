package iofacets

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// ReadError creates an error for an unreadable facets file.
func ReadError(path string, err error) error {
	msg := "Cannot read facets file <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.FacetConfigError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

// ParseError creates an error for an unparseable facets file.
func ParseError(path string, err error) error {
	msg := "Cannot parse facets file <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.FacetConfigError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot parse %s: %w", path, err),
	}
}

// UnknownKeyError creates an error for a facet key the engine does not
// know how to encode.
func UnknownKeyError(path, scope, key string) error {
	msg := "Unknown facet key <em>%s</em> in scope <em>%s</em> of <em>%s</em>"
	vars := []any{key, scopeName(scope), path}

	return &gn.Error{
		Code: errcode.FacetConfigError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"unknown facet key %q in scope %q of %s", key, scope, path),
	}
}

// AppendError creates an error for a vocabulary that cannot be added
// to the registry.
func AppendError(scope, key string, err error) error {
	msg := "Cannot register facet <em>%s</em> for scope <em>%s</em>"
	vars := []any{key, scopeName(scope)}

	return &gn.Error{
		Code: errcode.FacetScopeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"cannot register facet %q for scope %q: %w", key, scope, err),
	}
}

// LayoutViolationError creates an error for a vocabulary change that
// would move codes already used by stored rows.
func LayoutViolationError(scope, key string, err error) error {
	msg := "Facet <em>%s</em> in scope <em>%s</em> violates append-only " +
		"layout: %v"
	vars := []any{key, scopeName(scope), err}

	return &gn.Error{
		Code: errcode.FacetLayoutViolationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"facet %q in scope %q violates append-only layout: %w",
			key, scope, err),
	}
}

func scopeName(scope string) string {
	if scope == "" {
		return "global"
	}
	return scope
}
