package facet

// Proposal is the structured output of the classifier gateway for one
// taxon: at most one slug per single-valued facet, a slug list per
// multi-valued facet. Field names double as the JSON contract with the
// classifier. Unknown slugs survive here untouched; they are dropped
// later when the row builder encodes against the registry.
type Proposal struct {
	Size           string   `json:"size,omitempty"`
	ShapePrimary   string   `json:"shape_primary,omitempty"`
	ShapeSecondary string   `json:"shape_secondary,omitempty"`
	Pattern        string   `json:"pattern,omitempty"`
	TraitPrimary   string   `json:"trait_primary,omitempty"`
	TraitSecondary string   `json:"trait_secondary,omitempty"`
	Diet           string   `json:"diet,omitempty"`
	Colors         []string `json:"colors,omitempty"`
	Behaviors      []string `json:"behaviors,omitempty"`
	Habitats       []string `json:"habitats,omitempty"`
	CallTypes      []string `json:"call_types,omitempty"`
}

// Single returns the proposed slug for a single-valued facet key.
func (p *Proposal) Single(key Key) string {
	if p == nil {
		return ""
	}
	switch key {
	case Size:
		return p.Size
	case ShapePrimary:
		return p.ShapePrimary
	case ShapeSecondary:
		return p.ShapeSecondary
	case Pattern:
		return p.Pattern
	case TraitPrimary:
		return p.TraitPrimary
	case TraitSecondary:
		return p.TraitSecondary
	case Diet:
		return p.Diet
	default:
		return ""
	}
}

// Multi returns the proposed slugs for a multi-valued facet key.
func (p *Proposal) Multi(key Key) []string {
	if p == nil {
		return nil
	}
	switch key {
	case Colors:
		return p.Colors
	case Behaviors:
		return p.Behaviors
	case Habitats:
		return p.Habitats
	case CallTypes:
		return p.CallTypes
	default:
		return nil
	}
}
