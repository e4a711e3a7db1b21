package main

import (
	"fmt"
	"sort"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/spf13/cobra"
)

func getFacetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Print the resolved facet vocabularies",
		Long: `Print the facet vocabularies as the registry resolves them.

For every scope each slug is shown with the code it encodes to: enum
slugs get 1 + position, bitmask slugs get the bit at their position.
Positions are stable forever, which is why facets.yaml lists are
append-only.`,
		RunE: runFacets,
	}
}

func runFacets(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	scopes := reg.Scopes()
	sort.Strings(scopes)

	for _, scope := range scopes {
		name := scope
		if name == "" {
			name = "global"
		}
		fmt.Printf("Scope: %s\n", name)

		defs := reg.Definitions(scope)
		var lastKey facet.Key
		for _, d := range defs {
			if d.Key != lastKey {
				fmt.Printf("  %s (%s)\n", d.Key, kindName(d.Key))
				lastKey = d.Key
			}
			fmt.Printf("    %-20s %-20s %d\n", d.Slug, d.Label, d.Code)
		}
		fmt.Println()
	}
	return nil
}

func kindName(key facet.Key) string {
	if facet.KindOf(key) == facet.KindBitmask {
		return "bitmask"
	}
	return "enum"
}
