package iofacets

import (
	"context"
	"log/slog"
	"slices"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
)

// VerifyAndSaveLayouts compares the registry's vocabularies with the
// layouts persisted in the store. Every stored layout must be a prefix
// of the current one; a violation aborts startup, because encoded rows
// would otherwise decode against moved codes. Layouts that grew or are
// new get persisted.
func VerifyAndSaveLayouts(
	ctx context.Context,
	store gnfacet.Store,
	reg *facet.Registry,
) error {
	stored, err := store.FacetLayouts(ctx)
	if err != nil {
		return err
	}

	for _, scope := range reg.Scopes() {
		for _, key := range facet.AllKeys() {
			current := reg.Layout(scope, key)
			if len(current) == 0 {
				continue
			}

			prev := stored[scope][key]
			if err := facet.VerifyLayout(prev, current); err != nil {
				return LayoutViolationError(scope, string(key), err)
			}

			if slices.Equal(prev, current) {
				continue
			}

			err = store.SaveFacetLayout(ctx, scope, key, current)
			if err != nil {
				return err
			}
			slog.Info("Saved facet layout",
				"scope", scopeName(scope),
				"facet", key,
				"slugs", len(current),
			)
		}
	}

	return nil
}
