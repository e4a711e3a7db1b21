package ioclassify

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// MissingKeyError creates an error for a missing API key.
func MissingKeyError(envVar string) error {
	msg := "Environment variable <em>%s</em> with the API key is not set"
	vars := []any{envVar}

	return &gn.Error{
		Code: errcode.ClassifyRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("environment variable %s is not set", envVar),
	}
}

// RequestError creates an error for a failed classification request.
func RequestError(title string, err error) error {
	msg := "Classification request for <em>%s</em> failed"
	vars := []any{title}

	return &gn.Error{
		Code: errcode.ClassifyRequestError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"classification request for %q failed: %w", title, err),
	}
}
