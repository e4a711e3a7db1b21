// Package facet defines the facet vocabulary registry for GNfacet.
//
// A facet is a named descriptive dimension (color, diet, habitat...) with
// an enumerated vocabulary of slugs. Single-valued facets are encoded as
// small integer enum codes, multi-valued facets as one bit per slug packed
// into a mask. Codes are assigned by list position at definition time and
// never move: the only legal mutation of a vocabulary is appending new
// slugs at the end. The package is pure; loading vocabularies from files
// lives in internal/iofacets.
package facet

// Kind discriminates how a facet's vocabulary is encoded.
type Kind int

const (
	// KindEnum is a single-valued facet, encoded as 1 + list index.
	KindEnum Kind = iota + 1
	// KindBitmask is a multi-valued facet, encoded as 1 << list index.
	KindBitmask
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindBitmask:
		return "bitmask"
	default:
		return "unknown"
	}
}

// Key identifies a facet dimension.
type Key string

// Single-valued (enum) facet keys.
const (
	Size           Key = "size"
	ShapePrimary   Key = "shape_primary"
	ShapeSecondary Key = "shape_secondary"
	Pattern        Key = "pattern"
	TraitPrimary   Key = "trait_primary"
	TraitSecondary Key = "trait_secondary"
	Diet           Key = "diet"
)

// Multi-valued (bitmask) facet keys.
const (
	Colors    Key = "colors"
	Behaviors Key = "behaviors"
	Habitats  Key = "habitats"
	CallTypes Key = "call_types"
)

// EnumKeys returns all single-valued facet keys in canonical order.
func EnumKeys() []Key {
	return []Key{
		Size, ShapePrimary, ShapeSecondary, Pattern,
		TraitPrimary, TraitSecondary, Diet,
	}
}

// MaskKeys returns all multi-valued facet keys in canonical order.
func MaskKeys() []Key {
	return []Key{Colors, Behaviors, Habitats, CallTypes}
}

// AllKeys returns every facet key, enums first.
func AllKeys() []Key {
	return append(EnumKeys(), MaskKeys()...)
}

// KindOf returns the encoding kind for a key, or 0 for unknown keys.
func KindOf(key Key) Kind {
	switch key {
	case Size, ShapePrimary, ShapeSecondary, Pattern,
		TraitPrimary, TraitSecondary, Diet:
		return KindEnum
	case Colors, Behaviors, Habitats, CallTypes:
		return KindBitmask
	default:
		return 0
	}
}

// Option is one vocabulary entry: a slug plus a human-readable label.
type Option struct {
	// Slug is the canonical machine token, lower-case.
	Slug string
	// Label is shown to users; derived from the slug when not given.
	Label string
}

// Definition binds a slug to its code within a scope's vocabulary.
// Definitions are what Providers contribute and what gets persisted as
// a layout fingerprint.
type Definition struct {
	Scope string
	Key   Key
	Slug  string
	Label string
	Code  int64
}

// Provider contributes facet vocabulary for a scope. Providers are
// composed in an explicit priority order at startup; within one key the
// first provider's slugs come first, later providers append.
type Provider interface {
	Contribute(scope string) ([]Definition, error)
}
