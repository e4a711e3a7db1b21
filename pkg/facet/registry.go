package facet

import (
	"fmt"
	"strings"
)

// maskBits is the number of slugs a bitmask vocabulary can hold; masks
// are stored in BIGINT columns, the sign bit stays unused.
const maskBits = 63

// Registry owns, per scope, the ordered slug lists that define enum
// codes and bitmask bit positions for each facet key.
//
// Lists are immutable at query time; Append is the only mutation and it
// never changes an existing slug's code. Resolution of a scoped list
// falls back to the global (empty-string) scope when the scoped list is
// empty.
type Registry struct {
	lists map[string]map[Key][]Option
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{lists: make(map[string]map[Key][]Option)}
}

// Append adds options to the end of a scope's vocabulary for a key.
// Duplicate slugs within one list are rejected: re-adding an existing
// slug would either move it or shadow its code. A bitmask vocabulary
// may not grow past 63 slugs.
func (r *Registry) Append(scope string, key Key, opts []Option) error {
	kind := KindOf(key)
	if kind == 0 {
		return fmt.Errorf("unknown facet key %q", key)
	}

	scoped, ok := r.lists[scope]
	if !ok {
		scoped = make(map[Key][]Option)
		r.lists[scope] = scoped
	}

	list := scoped[key]
	seen := make(map[string]struct{}, len(list))
	for _, opt := range list {
		seen[opt.Slug] = struct{}{}
	}

	for _, opt := range opts {
		slug := NormalizeSlug(opt.Slug)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf(
				"facet %q: slug %q is already defined in scope %q",
				key, slug, scope,
			)
		}
		if kind == KindBitmask && len(list) >= maskBits {
			return fmt.Errorf(
				"facet %q: bitmask vocabulary is full (%d slugs)",
				key, maskBits,
			)
		}
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			label = slugLabel(slug)
		}
		list = append(list, Option{Slug: slug, Label: label})
		seen[slug] = struct{}{}
	}

	scoped[key] = list
	return nil
}

// Resolve returns the ordered vocabulary for a scope and key, falling
// back to the global scope when the scoped list is empty. The returned
// slice must not be modified.
func (r *Registry) Resolve(scope string, key Key) []Option {
	if scoped, ok := r.lists[scope]; ok {
		if list := scoped[key]; len(list) > 0 {
			return list
		}
	}
	if scope == "" {
		return nil
	}
	if global, ok := r.lists[""]; ok {
		return global[key]
	}
	return nil
}

// Encode maps a slug to its code within a scope's vocabulary.
// Enum codes are 1 + index, bitmask codes are 1 << index.
// The second return value is false for slugs absent from the list.
func (r *Registry) Encode(scope string, key Key, slug string) (int64, bool) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return 0, false
	}
	for i, opt := range r.Resolve(scope, key) {
		if opt.Slug == slug {
			return codeAt(KindOf(key), i), true
		}
	}
	return 0, false
}

// Decode maps a code back to its vocabulary option.
func (r *Registry) Decode(scope string, key Key, code int64) (Option, bool) {
	list := r.Resolve(scope, key)
	for i := range list {
		if codeAt(KindOf(key), i) == code {
			return list[i], true
		}
	}
	return Option{}, false
}

// EncodeMask ORs the bits of every recognized slug into a mask.
// Unrecognized slugs are silently dropped.
func (r *Registry) EncodeMask(scope string, key Key, slugs []string) int64 {
	var mask int64
	for _, slug := range slugs {
		if code, ok := r.Encode(scope, key, slug); ok {
			mask |= code
		}
	}
	return mask
}

// DecodeMask returns the options whose bits are set in mask, in
// vocabulary order.
func (r *Registry) DecodeMask(scope string, key Key, mask int64) []Option {
	var res []Option
	for i, opt := range r.Resolve(scope, key) {
		if mask&(int64(1)<<i) != 0 {
			res = append(res, opt)
		}
	}
	return res
}

// Layout returns the ordered slugs of a scope's own list for a key,
// without global fallback. It is the unit of append-only verification.
func (r *Registry) Layout(scope string, key Key) []string {
	scoped, ok := r.lists[scope]
	if !ok {
		return nil
	}
	list := scoped[key]
	res := make([]string, len(list))
	for i, opt := range list {
		res[i] = opt.Slug
	}
	return res
}

// Scopes returns every scope name present in the registry, the global
// scope included as the empty string.
func (r *Registry) Scopes() []string {
	res := make([]string, 0, len(r.lists))
	for scope := range r.lists {
		res = append(res, scope)
	}
	return res
}

// Definitions returns the full slug→code table of a scope, in
// canonical key order. Used by the facets CLI command and layout
// persistence.
func (r *Registry) Definitions(scope string) []Definition {
	var res []Definition
	scoped := r.lists[scope]
	if scoped == nil {
		return nil
	}
	for _, key := range AllKeys() {
		for i, opt := range scoped[key] {
			res = append(res, Definition{
				Scope: scope,
				Key:   key,
				Slug:  opt.Slug,
				Label: opt.Label,
				Code:  codeAt(KindOf(key), i),
			})
		}
	}
	return res
}

// VerifyLayout checks that stored is a prefix of current. Any insert,
// removal or reorder of an existing slug moves codes and corrupts every
// previously stored facet row, so it is a protocol violation.
func VerifyLayout(stored, current []string) error {
	if len(current) < len(stored) {
		return fmt.Errorf(
			"vocabulary shrank from %d to %d slugs",
			len(stored), len(current),
		)
	}
	for i, slug := range stored {
		if current[i] != slug {
			return fmt.Errorf(
				"slug %q at position %d replaced by %q",
				slug, i, current[i],
			)
		}
	}
	return nil
}

func codeAt(kind Kind, index int) int64 {
	if kind == KindBitmask {
		return int64(1) << index
	}
	return int64(index + 1)
}

// slugLabel derives a display label from a slug: "call_types" style
// tokens become "Call Types".
func slugLabel(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
