// Package iorow builds compact facet rows. It layers three slug
// sources per facet (manual override, classifier proposal, legacy
// fallback), encodes them against the registry, merges with the stored
// row and writes the result in a single upsert.
package iorow

import (
	"context"
	"log/slog"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/taxon"
)

// Builder encodes and persists one taxon's facet row per call.
type Builder struct {
	store gnfacet.Store
	reg   *facet.Registry
	clf   gnfacet.Classifier
	scope string
}

// New creates a row builder. The classifier may be nil; building then
// relies on manual and legacy slugs only.
func New(
	store gnfacet.Store,
	reg *facet.Registry,
	clf gnfacet.Classifier,
	scope string,
) *Builder {
	return &Builder{store: store, reg: reg, clf: clf, scope: scope}
}

// Vocabulary returns the allowed slug lists of the builder's scope,
// the shape the classifier prompt needs.
func (b *Builder) Vocabulary() gnfacet.Vocabulary {
	vocab := make(gnfacet.Vocabulary)
	for _, key := range facet.AllKeys() {
		opts := b.reg.Resolve(b.scope, key)
		if len(opts) == 0 {
			continue
		}
		slugs := make([]string, len(opts))
		for i, opt := range opts {
			slugs[i] = opt.Slug
		}
		vocab[key] = slugs
	}
	return vocab
}

// Build resolves the taxon's facet slugs, encodes them and upserts the
// row. Manual slugs win over the classifier's, which win over legacy
// fallbacks; unknown slugs are dropped at encode time. A classifier
// failure is logged and treated as an empty proposal: the stored codes
// survive untouched, but the row itself is still written, carrying
// rank and extinct from the source record, so the taxon stays
// reachable by search.
func (b *Builder) Build(
	ctx context.Context,
	t *taxon.Taxon,
	manual, legacy *facet.Proposal,
) error {
	var proposed *facet.Proposal
	if b.clf != nil {
		var err error
		proposed, err = b.clf.Classify(ctx, t.Title(), b.Vocabulary())
		if err != nil {
			slog.Warn("Classifier unavailable, discarding its layer",
				"taxon", t.Title(), "error", err)
			proposed = nil
		}
	}

	stored, err := b.store.FacetRow(ctx, t.ID, b.scope)
	if err != nil {
		return err
	}

	var up facet.RowUpdate
	if proposed == nil && manual == nil && legacy == nil {
		// No layer has anything to say; re-encoding would blank the
		// stored codes, so they pass through as they are.
		if stored != nil {
			up.Codes = stored.Codes
		}
	} else {
		up = b.resolve(manual, proposed, legacy)
	}
	up.Rank = t.Rank
	extinct := t.Extinct
	up.Extinct = &extinct

	row := facet.MergeRow(stored, t.ID, b.scope, up)
	return b.store.UpsertFacetRow(ctx, &row)
}

// resolve encodes the layered slug sources into facet codes.
func (b *Builder) resolve(
	manual, proposed, legacy *facet.Proposal,
) facet.RowUpdate {
	var up facet.RowUpdate

	for _, key := range facet.EnumKeys() {
		slug := firstSlug(
			manual.Single(key), proposed.Single(key), legacy.Single(key),
		)
		if slug == "" {
			continue
		}
		if code, ok := b.reg.Encode(b.scope, key, slug); ok {
			up.SetEnum(key, code)
		}
	}

	for _, key := range facet.MaskKeys() {
		slugs := firstList(
			manual.Multi(key), proposed.Multi(key), legacy.Multi(key),
		)
		if len(slugs) == 0 {
			continue
		}
		slugs = facet.ParseSlugList(slugs)
		up.SetMask(key, b.reg.EncodeMask(b.scope, key, slugs))
	}

	return up
}

func firstSlug(candidates ...string) string {
	for _, c := range candidates {
		if facet.NormalizeSlug(c) != "" {
			return c
		}
	}
	return ""
}

func firstList(candidates ...[]string) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}
