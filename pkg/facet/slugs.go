package facet

import (
	"strings"
)

// NormalizeSlug lowers and trims a raw token so that "Red " and "red"
// encode identically.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseSlugList normalizes a multi-valued parameter into a deduplicated
// slug list, keeping first-seen order. It accepts either a list of
// strings or a single comma-separated string; every caller-facing
// boundary goes through it once, so internal code never branches on
// parameter shape again.
func ParseSlugList(raw any) []string {
	var tokens []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		tokens = strings.Split(v, ",")
	case []string:
		for _, s := range v {
			tokens = append(tokens, strings.Split(s, ",")...)
		}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	var res []string
	for _, t := range tokens {
		slug := NormalizeSlug(t)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		res = append(res, slug)
	}
	return res
}

// ParseOptionList parses a flat newline/comma-separated vocabulary
// definition into ordered options. An entry may carry an explicit label
// after a pipe: "br|Brown". Blank entries are skipped.
func ParseOptionList(raw string) []Option {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})
	var res []Option
	for _, f := range fields {
		slug, label, _ := strings.Cut(f, "|")
		slug = NormalizeSlug(slug)
		if slug == "" {
			continue
		}
		res = append(res, Option{Slug: slug, Label: strings.TrimSpace(label)})
	}
	return res
}
