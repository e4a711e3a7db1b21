package iostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/gnames/gnfacet/internal/iodb"
	"github.com/gnames/gnfacet/internal/ioschema"
	"github.com/gnames/gnfacet/internal/iostore"
	"github.com/gnames/gnfacet/internal/iotesting"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/query"
	"github.com/gnames/gnfacet/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore connects to the test database and recreates the schema.
func setupStore(t *testing.T) (gnfacet.Store, func()) {
	t.Helper()
	ctx := context.Background()
	cfg := iotesting.GetTestConfig()

	op := iodb.NewPgxOperator()
	err := op.Connect(ctx, &cfg.Database)
	require.NoError(t, err, "test database must be reachable")

	require.NoError(t, op.DropAllTables(ctx))
	mgr := ioschema.NewManager(op)
	require.NoError(t, mgr.Create(ctx, cfg))

	cleanup := func() {
		_ = op.DropAllTables(ctx)
		_ = op.Close()
	}
	return iostore.New(op), cleanup
}

func TestStore_TaxonLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := setupStore(t)
	defer cleanup()

	in := &taxon.Taxon{
		ExternalID: 13858,
		Name:       "Passer domesticus",
		CommonName: "House Sparrow",
		Rank:       "species",
		PendingChildren: []taxon.PendingChildRef{
			{ExternalID: 101}, {ExternalID: 102},
		},
	}

	id, err := s.UpsertTaxon(ctx, in)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	// idempotent on external id
	id2, err := s.UpsertTaxon(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := s.TaxonByExternalID(ctx, 13858)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "House Sparrow", got.CommonName)
	assert.Len(t, got.PendingChildren, 2)

	// re-ingest without children keeps the stored queue
	_, err = s.UpsertTaxon(ctx, &taxon.Taxon{
		ExternalID: 13858,
		Name:       "Passer domesticus",
	})
	require.NoError(t, err)
	got, err = s.TaxonByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.PendingChildren, 2)

	parents, err := s.PendingParents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, parents, 1)

	// mark both processed, parent drops out of the scan
	refs := got.PendingChildren
	for i := range refs {
		refs[i].Processed = true
	}
	require.NoError(t, s.SetPendingChildren(ctx, id, refs))
	parents, err = s.PendingParents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, parents)

	missing, err := s.TaxonByExternalID(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_FacetRowSticky_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := setupStore(t)
	defer cleanup()

	id, err := s.UpsertTaxon(ctx, &taxon.Taxon{
		ExternalID: 1, Name: "Passer domesticus",
	})
	require.NoError(t, err)

	famID := int64(55)
	err = s.UpsertFacetRow(ctx, &facet.Row{
		TaxonID: id,
		Codes:   facet.Codes{Size: 2, ColorMask: 0b11},
		Rank:    "species",
		FamilyID: &famID,
	})
	require.NoError(t, err)

	// upsert with empty rank and nil family keeps stored values
	err = s.UpsertFacetRow(ctx, &facet.Row{
		TaxonID: id,
		Codes:   facet.Codes{Size: 3},
	})
	require.NoError(t, err)

	row, err := s.FacetRow(ctx, id, "")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(3), row.Size)
	assert.Equal(t, int64(0), row.ColorMask)
	assert.Equal(t, "species", row.Rank)
	require.NotNil(t, row.FamilyID)
	assert.Equal(t, int64(55), *row.FamilyID)

	missing, err := s.FacetRow(ctx, id, "na")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_SearchAndViews_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := setupStore(t)
	defer cleanup()

	mk := func(extID int64, name, common string, colors int64) int64 {
		id, err := s.UpsertTaxon(ctx, &taxon.Taxon{
			ExternalID: extID, Name: name, CommonName: common,
			Rank: "species",
		})
		require.NoError(t, err)
		err = s.UpsertFacetRow(ctx, &facet.Row{
			TaxonID: id,
			Codes:   facet.Codes{ColorMask: colors},
			Rank:    "species",
		})
		require.NoError(t, err)
		return id
	}

	sparrow := mk(1, "Passer domesticus", "House Sparrow", 0b011)
	mk(2, "Turdus merula", "Common Blackbird", 0b001)
	mk(3, "Cyanistes caeruleus", "Blue Tit", 0b100)

	// ALL-of on colors
	plan := &query.Plan{
		Page: 1, PerPage: 24, Sort: query.SortTitle,
		Masks: []query.MaskPredicate{
			{Key: facet.Colors, Mask: 0b011, All: true},
		},
	}
	res, err := s.Search(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, sparrow, res.Items[0].Taxon.ID)

	// ANY-of matches two
	plan.Masks[0].All = false
	res, err = s.Search(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	// free text search
	plan = &query.Plan{
		Page: 1, PerPage: 24, Sort: query.SortTitle,
		Search: "blackbird",
	}
	res, err = s.Search(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Common Blackbird", res.Items[0].Taxon.CommonName)

	// views drive the popular sort
	now := time.Now().UTC()
	for range 5 {
		require.NoError(t, s.RecordView(ctx, sparrow, now))
	}
	plan = &query.Plan{Page: 1, PerPage: 24, Sort: query.SortPopular}
	res, err = s.Search(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)
	assert.Equal(t, sparrow, res.Items[0].Taxon.ID)
	assert.Equal(t, int64(5), res.Items[0].Row.Popularity)

	// rollup keeps in-window views
	n, err := s.RollupPopularity(ctx, now, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "score already equals windowed sum")

	row, err := s.FacetRow(ctx, sparrow, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), row.Popularity)
}

func TestStore_FirstViewSeedsRow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := setupStore(t)
	defer cleanup()

	id, err := s.UpsertTaxon(ctx, &taxon.Taxon{
		ExternalID: 12727,
		Name:       "Turdus merula",
		CommonName: "Common Blackbird",
		Rank:       "species",
	})
	require.NoError(t, err)

	// no facet row yet: the first view seeds the global-scope row
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.RecordView(ctx, id, now))
	require.NoError(t, s.RecordView(ctx, id, now.Add(time.Minute)))

	row, err := s.FacetRow(ctx, id, "")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(2), row.Popularity)
	assert.Equal(t, now.Add(time.Minute), row.LastViewed.UTC())
}

func TestStore_FacetLayouts_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := setupStore(t)
	defer cleanup()

	err := s.SaveFacetLayout(ctx, "", facet.Colors,
		[]string{"black", "white", "red"})
	require.NoError(t, err)
	err = s.SaveFacetLayout(ctx, "na", facet.Size,
		[]string{"small", "large"})
	require.NoError(t, err)

	layouts, err := s.FacetLayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"black", "white", "red"}, layouts[""][facet.Colors])
	assert.Equal(t,
		[]string{"small", "large"}, layouts["na"][facet.Size])

	// saving again replaces the layout
	err = s.SaveFacetLayout(ctx, "", facet.Colors,
		[]string{"black", "white", "red", "blue"})
	require.NoError(t, err)
	layouts, err = s.FacetLayouts(ctx)
	require.NoError(t, err)
	assert.Len(t, layouts[""][facet.Colors], 4)
}
