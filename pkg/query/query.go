// Package query compiles a faceted search request into a typed
// predicate plan. The package is pure: plans are executed either as SQL
// by the PostgreSQL store or in memory by the memory store, both
// honoring the same semantics.
//
// Combination semantics are not uniform across facet families: the
// colors facet requires every selected value to be present on a row
// (ALL-of), while behaviors, habitats and call_types require at least
// one (ANY-of). Single-valued facets compile to code equality, or code
// membership when alias merging yields several slugs.
package query

import (
	"strings"

	"github.com/gnames/gnfacet/pkg/facet"
)

// SortMode orders search results.
type SortMode string

const (
	// SortPopular orders by popularity desc, last-viewed desc, title asc.
	SortPopular SortMode = "popular"
	// SortTitle orders by title asc.
	SortTitle SortMode = "title"
	// SortNewest orders by creation time desc, id desc.
	SortNewest SortMode = "newest"
)

// ParseSortMode maps a raw sort parameter to a SortMode, defaulting to
// SortPopular for anything unrecognized.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortTitle:
		return SortTitle
	case SortNewest:
		return SortNewest
	default:
		return SortPopular
	}
}

// Request is a normalized search request. The API boundary is expected
// to have already run multi-valued parameters through
// facet.ParseSlugList and folded legacy aliases into canonical keys.
type Request struct {
	Page    int
	PerPage int
	Sort    string

	// Single holds single-valued facet selections. More than one slug
	// per key only happens through alias merging and compiles to code
	// membership.
	Single map[facet.Key][]string

	// Multi holds multi-valued facet selections.
	Multi map[facet.Key][]string

	// Search is a free-text substring, matched case-insensitively
	// against title, excerpt and description.
	Search string

	// Rank filters on the exact rank string.
	Rank string

	// IncludeExtinct includes extinct taxa; they are excluded by
	// default.
	IncludeExtinct bool
}

// Limits carries the deployment's pagination caps.
type Limits struct {
	PerPageDefault int
	PerPageMax     int
}

// DefaultLimits matches the documented API defaults.
func DefaultLimits() Limits {
	return Limits{PerPageDefault: 24, PerPageMax: 48}
}

// EnumPredicate matches rows whose enum code for Key is in Codes.
type EnumPredicate struct {
	Key   facet.Key
	Codes []int64
}

// MaskPredicate matches rows against a selection bitmask. All selects
// ALL-of semantics: (row & Mask) == Mask; otherwise ANY-of:
// (row & Mask) != 0.
type MaskPredicate struct {
	Key  facet.Key
	Mask int64
	All  bool
}

// Plan is a compiled search: set-membership predicates over the compact
// record store plus ordering and pagination. A malformed request never
// fails compilation; parameters are clamped and unknown slugs dropped.
type Plan struct {
	Scope   string
	Page    int
	PerPage int
	Sort    SortMode

	Enums []EnumPredicate
	Masks []MaskPredicate

	// Search is lower-cased once at compile time.
	Search string
	Rank   string

	IncludeExtinct bool
}

// Offset returns the row offset of the requested page.
func (p *Plan) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Compile translates a request into a plan using the scope's
// vocabulary. Unknown slugs are dropped silently: from multi-valued
// selections slug by slug, and a single-valued selection whose every
// slug is unknown is treated as absent.
func Compile(
	reg *facet.Registry,
	scope string,
	req Request,
	lim Limits,
) Plan {
	plan := Plan{
		Scope:          scope,
		Sort:           ParseSortMode(req.Sort),
		Search:         strings.ToLower(strings.TrimSpace(req.Search)),
		Rank:           strings.TrimSpace(req.Rank),
		IncludeExtinct: req.IncludeExtinct,
	}
	plan.Page, plan.PerPage = clampPage(req.Page, req.PerPage, lim)

	for _, key := range facet.EnumKeys() {
		slugs := req.Single[key]
		if len(slugs) == 0 {
			continue
		}
		var codes []int64
		for _, slug := range slugs {
			if code, ok := reg.Encode(scope, key, slug); ok {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			continue
		}
		plan.Enums = append(plan.Enums, EnumPredicate{Key: key, Codes: codes})
	}

	for _, key := range facet.MaskKeys() {
		slugs := req.Multi[key]
		if len(slugs) == 0 {
			continue
		}
		mask := reg.EncodeMask(scope, key, slugs)
		if mask == 0 {
			continue
		}
		plan.Masks = append(plan.Masks, MaskPredicate{
			Key:  key,
			Mask: mask,
			// Every selected color must be present; the other mask
			// facets need one match.
			All: key == facet.Colors,
		})
	}

	return plan
}

func clampPage(page, perPage int, lim Limits) (int, int) {
	if lim.PerPageDefault <= 0 {
		lim.PerPageDefault = 24
	}
	if lim.PerPageMax <= 0 {
		lim.PerPageMax = 48
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = lim.PerPageDefault
	}
	if perPage > lim.PerPageMax {
		perPage = lim.PerPageMax
	}
	return page, perPage
}
