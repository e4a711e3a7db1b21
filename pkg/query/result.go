package query

import (
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/taxon"
)

// Item is one search hit: the catalog entity together with its compact
// facet record, so callers can decode facet summaries without a second
// lookup.
type Item struct {
	Taxon taxon.Taxon
	Row   facet.Row
}

// Result is one page of matching items plus the exact total count,
// independent of the page size, for caller-side pagination.
type Result struct {
	Items   []Item
	Total   int
	Page    int
	PerPage int
}
