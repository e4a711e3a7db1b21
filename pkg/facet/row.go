package facet

import (
	"time"
)

// Codes is the encoded part of a facet row: one enum code per
// single-valued facet (0 means absent) and one bitmask per multi-valued
// facet.
type Codes struct {
	Size           int64
	ShapePrimary   int64
	ShapeSecondary int64
	Pattern        int64
	TraitPrimary   int64
	TraitSecondary int64
	Diet           int64

	ColorMask    int64
	BehaviorMask int64
	HabitatMask  int64
	CallTypeMask int64
}

// Enum returns the enum code stored for a single-valued key.
func (c *Codes) Enum(key Key) int64 {
	switch key {
	case Size:
		return c.Size
	case ShapePrimary:
		return c.ShapePrimary
	case ShapeSecondary:
		return c.ShapeSecondary
	case Pattern:
		return c.Pattern
	case TraitPrimary:
		return c.TraitPrimary
	case TraitSecondary:
		return c.TraitSecondary
	case Diet:
		return c.Diet
	default:
		return 0
	}
}

// SetEnum stores the enum code for a single-valued key.
func (c *Codes) SetEnum(key Key, code int64) {
	switch key {
	case Size:
		c.Size = code
	case ShapePrimary:
		c.ShapePrimary = code
	case ShapeSecondary:
		c.ShapeSecondary = code
	case Pattern:
		c.Pattern = code
	case TraitPrimary:
		c.TraitPrimary = code
	case TraitSecondary:
		c.TraitSecondary = code
	case Diet:
		c.Diet = code
	}
}

// Mask returns the bitmask stored for a multi-valued key.
func (c *Codes) Mask(key Key) int64 {
	switch key {
	case Colors:
		return c.ColorMask
	case Behaviors:
		return c.BehaviorMask
	case Habitats:
		return c.HabitatMask
	case CallTypes:
		return c.CallTypeMask
	default:
		return 0
	}
}

// SetMask stores the bitmask for a multi-valued key.
func (c *Codes) SetMask(key Key, mask int64) {
	switch key {
	case Colors:
		c.ColorMask = mask
	case Behaviors:
		c.BehaviorMask = mask
	case Habitats:
		c.HabitatMask = mask
	case CallTypes:
		c.CallTypeMask = mask
	}
}

// Row is the compact per-taxon record the query compiler filters on.
type Row struct {
	TaxonID int64
	Scope   string

	Codes

	// Rank is sticky: an upsert with an empty incoming rank never
	// blanks a stored one.
	Rank string

	// Extinct is sticky the same way; an undefined incoming value
	// keeps the stored flag.
	Extinct bool

	// Popularity is the trailing-window view score maintained by the
	// rollup; consumed only as a sort tie-break.
	Popularity int64

	// LastViewed is zero for rows never viewed.
	LastViewed time.Time

	// Auxiliary foreign keys, preserved across upserts unless a new
	// non-null value arrives.
	FamilyID *int64
	RegionID *int64
}

// RowUpdate carries one upsert's worth of incoming values. Encoded
// facet fields replace the stored ones wholesale; the remaining fields
// follow "never silently erase" rules: the zero value (empty string,
// nil pointer) means "no new information, keep what is stored".
type RowUpdate struct {
	Codes

	Rank     string
	Extinct  *bool
	FamilyID *int64
	RegionID *int64
}

// MergeRow combines an incoming update with the previously stored row
// (nil when the taxon has no row yet) into the full record to write.
// Popularity and LastViewed are owned by the view counters and pass
// through from the stored row untouched.
func MergeRow(stored *Row, taxonID int64, scope string, up RowUpdate) Row {
	res := Row{
		TaxonID: taxonID,
		Scope:   scope,
		Codes:   up.Codes,
	}

	if stored != nil {
		res.Rank = stored.Rank
		res.Extinct = stored.Extinct
		res.Popularity = stored.Popularity
		res.LastViewed = stored.LastViewed
		res.FamilyID = stored.FamilyID
		res.RegionID = stored.RegionID
	}

	if up.Rank != "" {
		res.Rank = up.Rank
	}
	if up.Extinct != nil {
		res.Extinct = *up.Extinct
	}
	if up.FamilyID != nil {
		res.FamilyID = up.FamilyID
	}
	if up.RegionID != nil {
		res.RegionID = up.RegionID
	}

	return res
}
