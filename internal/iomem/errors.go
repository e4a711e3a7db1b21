package iomem

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfacet/pkg/errcode"
)

// UnknownTaxonError creates an error for a write against a taxon id
// that does not exist in the store.
func UnknownTaxonError(id int64) error {
	msg := "Taxon <em>%d</em> does not exist"
	vars := []any{id}

	return &gn.Error{
		Code: errcode.IngestStoreError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("taxon %d does not exist", id),
	}
}
