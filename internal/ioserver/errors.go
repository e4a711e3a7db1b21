package ioserver

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// StartError creates an error for a server that could not start or
// crashed while serving.
func StartError(port int, err error) error {
	msg := "Search API on port <em>%d</em> failed"
	vars := []any{port}

	return &gn.Error{
		Code: errcode.ServerStartError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("search API on port %d failed: %w", port, err),
	}
}
