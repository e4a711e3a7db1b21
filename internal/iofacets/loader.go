// Package iofacets loads facet vocabularies from facets.yaml,
// composes them with any additional providers, and verifies the
// resulting registry against the layouts persisted in the database so
// that an illegal vocabulary change is caught before any row is
// encoded against moved codes.
package iofacets

import (
	"os"

	"github.com/gnames/gnfacet/pkg/facet"
	"gopkg.in/yaml.v3"
)

// File is the parsed facets.yaml configuration.
type File struct {
	Scopes []ScopeConfig `yaml:"scopes"`
}

// ScopeConfig holds one scope's flat vocabulary definitions: facet key
// to newline/comma-separated slug list.
type ScopeConfig struct {
	// Name of the scope; empty string is the global default scope.
	Name string `yaml:"name"`

	// Facets maps facet keys to flat option lists.
	Facets map[string]string `yaml:"facets"`
}

// Load reads and parses a facets.yaml file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReadError(path, err)
	}

	var res File
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, ParseError(path, err)
	}

	for _, sc := range res.Scopes {
		for key := range sc.Facets {
			if facet.KindOf(facet.Key(key)) == 0 {
				return nil, UnknownKeyError(path, sc.Name, key)
			}
		}
	}

	return &res, nil
}

// ScopeNames returns every scope the file defines.
func (f *File) ScopeNames() []string {
	res := make([]string, 0, len(f.Scopes))
	for _, sc := range f.Scopes {
		res = append(res, sc.Name)
	}
	return res
}

// Contribute implements facet.Provider: the file's options for a
// scope, in definition order. Codes are assigned later by registry
// position, so they are left zero here.
func (f *File) Contribute(scope string) ([]facet.Definition, error) {
	var res []facet.Definition
	for _, sc := range f.Scopes {
		if sc.Name != scope {
			continue
		}
		for _, key := range facet.AllKeys() {
			raw, ok := sc.Facets[string(key)]
			if !ok {
				continue
			}
			for _, opt := range facet.ParseOptionList(raw) {
				res = append(res, facet.Definition{
					Scope: scope,
					Key:   key,
					Slug:  opt.Slug,
					Label: opt.Label,
				})
			}
		}
	}
	return res, nil
}

// BuildRegistry assembles a registry from providers in priority
// order: within one scope and key, earlier providers' slugs come
// first, later providers append.
func BuildRegistry(
	scopes []string,
	providers ...facet.Provider,
) (*facet.Registry, error) {
	reg := facet.NewRegistry()

	// The global scope always exists even when no file entry names it.
	seen := map[string]bool{"": true}
	ordered := []string{""}
	for _, s := range scopes {
		if !seen[s] {
			seen[s] = true
			ordered = append(ordered, s)
		}
	}

	for _, scope := range ordered {
		for _, p := range providers {
			defs, err := p.Contribute(scope)
			if err != nil {
				return nil, err
			}
			byKey := make(map[facet.Key][]facet.Option)
			var keys []facet.Key
			for _, d := range defs {
				if _, ok := byKey[d.Key]; !ok {
					keys = append(keys, d.Key)
				}
				byKey[d.Key] = append(byKey[d.Key], facet.Option{
					Slug:  d.Slug,
					Label: d.Label,
				})
			}
			for _, key := range keys {
				if err := reg.Append(scope, key, byKey[key]); err != nil {
					return nil, AppendError(scope, string(key), err)
				}
			}
		}
	}

	return reg, nil
}
