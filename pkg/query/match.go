package query

import (
	"strings"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/taxon"
)

// MatchCodes evaluates the plan's facet predicates against a compact
// record. This is the reference semantics; the SQL rendering in the
// PostgreSQL store must agree with it.
func (p *Plan) MatchCodes(c *facet.Codes) bool {
	for _, ep := range p.Enums {
		code := c.Enum(ep.Key)
		var ok bool
		for _, want := range ep.Codes {
			if code == want {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	for _, mp := range p.Masks {
		m := c.Mask(mp.Key)
		if mp.All {
			if m&mp.Mask != mp.Mask {
				return false
			}
		} else if m&mp.Mask == 0 {
			return false
		}
	}

	return true
}

// MatchTaxon evaluates the plan's non-facet filters: free-text
// substring, rank and extinct inclusion.
func (p *Plan) MatchTaxon(t *taxon.Taxon, rowRank string, rowExtinct bool) bool {
	if !p.IncludeExtinct && rowExtinct {
		return false
	}
	if p.Rank != "" && rowRank != p.Rank {
		return false
	}
	if p.Search != "" {
		hay := strings.ToLower(
			t.Title() + "\n" + t.Name + "\n" + t.Excerpt,
		)
		if !strings.Contains(hay, p.Search) {
			return false
		}
	}
	return true
}
