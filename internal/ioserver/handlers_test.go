package ioserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gnames/gnfacet/internal/iomem"
	"github.com/gnames/gnfacet/internal/iorow"
	"github.com/gnames/gnfacet/internal/ioserver"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClassifier struct {
	proposal *facet.Proposal
}

func (f *fixedClassifier) Classify(
	ctx context.Context,
	title string,
	vocab gnfacet.Vocabulary,
) (*facet.Proposal, error) {
	return f.proposal, nil
}

func testRegistry(t *testing.T) *facet.Registry {
	t.Helper()
	reg := facet.NewRegistry()
	opts := func(slugs ...string) []facet.Option {
		res := make([]facet.Option, len(slugs))
		for i, s := range slugs {
			res[i] = facet.Option{Slug: s}
		}
		return res
	}
	require.NoError(t,
		reg.Append("", facet.Colors, opts("red", "blue", "green")))
	require.NoError(t,
		reg.Append("", facet.Size, opts("small", "medium", "large")))
	require.NoError(t,
		reg.Append("", facet.Habitats, opts("forest", "urban")))
	return reg
}

// newAPI wires a memory store, a registry and the handler together.
func newAPI(t *testing.T) (*httptest.Server, gnfacet.Store, *facet.Registry) {
	t.Helper()
	cfg := config.New()
	store := iomem.New()
	reg := testRegistry(t)
	srv := httptest.NewServer(ioserver.New(cfg, store, reg).Handler())
	t.Cleanup(srv.Close)
	return srv, store, reg
}

func get(
	t *testing.T,
	url string,
	payload any,
) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if payload != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(payload))
	}
	return resp
}

func TestPing(t *testing.T) {
	srv, _, _ := newAPI(t)
	resp := get(t, srv.URL+"/taxa/v1/ping", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestSearchEndToEnd follows the full path: ingest a taxon whose
// facets come from a classifier proposal, then search it through the
// HTTP API with ALL-of color semantics.
func TestSearchEndToEnd(t *testing.T) {
	srv, store, reg := newAPI(t)
	ctx := context.Background()

	sparrow := &taxon.Taxon{
		ExternalID: 13858,
		Name:       "Passer domesticus",
		CommonName: "Sparrow",
		Rank:       "species",
	}
	id, err := store.UpsertTaxon(ctx, sparrow)
	require.NoError(t, err)
	sparrow.ID = id

	builder := iorow.New(store, reg, &fixedClassifier{
		proposal: &facet.Proposal{
			Size:   "small",
			Colors: []string{"red", "blue"},
		},
	}, "")
	require.NoError(t, builder.Build(ctx, sparrow, nil, nil))

	// single color: ANY/ALL degenerate case matches
	var res ioserver.SearchResponse
	get(t, srv.URL+"/taxa/v1/search?size=small&colors=red", &res)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Sparrow", res.Items[0].Title)
	assert.Equal(t, "species", res.Items[0].TaxaRank)
	assert.Contains(t, res.Items[0].Facets, "Size: Small")
	assert.Contains(t, res.Items[0].Facets, "Colors: Red, Blue")

	// ALL-of: green is absent, so the row must not match
	get(t, srv.URL+"/taxa/v1/search?colors=red,green", &res)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 24, res.PerPage)

	// both selected colors present
	get(t, srv.URL+"/taxa/v1/search?colors=red,blue", &res)
	assert.Equal(t, 1, res.Total)
}

func TestSearchClampsAndDefaults(t *testing.T) {
	srv, _, _ := newAPI(t)

	var res ioserver.SearchResponse
	get(t, srv.URL+"/taxa/v1/search?page=-3&per_page=1000", &res)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 48, res.PerPage)
	assert.NotNil(t, res.Items)
}

func TestSearchUnknownSlugNarrowsNothing(t *testing.T) {
	srv, store, reg := newAPI(t)
	ctx := context.Background()

	tx := &taxon.Taxon{ExternalID: 1, Name: "Passer domesticus"}
	id, err := store.UpsertTaxon(ctx, tx)
	require.NoError(t, err)
	tx.ID = id
	builder := iorow.New(store, reg, nil, "")
	require.NoError(t, builder.Build(ctx, tx,
		&facet.Proposal{Colors: []string{"red"}}, nil))

	// unknown slug is dropped, the query runs unfiltered
	var res ioserver.SearchResponse
	get(t, srv.URL+"/taxa/v1/search?colors=chartreuse", &res)
	assert.Equal(t, 1, res.Total)
}

func TestCallPatternAlias(t *testing.T) {
	srv, store, reg := newAPI(t)
	ctx := context.Background()

	require.NoError(t, reg.Append("", facet.Pattern, []facet.Option{
		{Slug: "striped"}, {Slug: "plain"},
	}))

	tx := &taxon.Taxon{ExternalID: 1, Name: "Passer domesticus"}
	id, err := store.UpsertTaxon(ctx, tx)
	require.NoError(t, err)
	tx.ID = id
	builder := iorow.New(store, reg, nil, "")
	require.NoError(t, builder.Build(ctx, tx,
		&facet.Proposal{Pattern: "striped"}, nil))

	var res ioserver.SearchResponse
	get(t, srv.URL+"/taxa/v1/search?call_pattern=striped", &res)
	assert.Equal(t, 1, res.Total)

	get(t, srv.URL+"/taxa/v1/search?call_pattern=plain", &res)
	assert.Equal(t, 0, res.Total)
}

func TestTaxonDetailRecordsView(t *testing.T) {
	srv, store, reg := newAPI(t)
	ctx := context.Background()

	tx := &taxon.Taxon{
		ExternalID: 1,
		Name:       "Passer domesticus",
		CommonName: "House Sparrow",
	}
	id, err := store.UpsertTaxon(ctx, tx)
	require.NoError(t, err)
	tx.ID = id
	builder := iorow.New(store, reg, nil, "")
	require.NoError(t, builder.Build(ctx, tx,
		&facet.Proposal{Size: "small"}, nil))

	var res ioserver.TaxonResponse
	resp := get(t, srv.URL+"/taxa/v1/taxa/1", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "House Sparrow", res.Title)
	assert.Equal(t, "Passer domesticus", res.Name)

	row, err := store.FacetRow(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Popularity)
	assert.False(t, row.LastViewed.IsZero())

	resp = get(t, srv.URL+"/taxa/v1/taxa/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, srv.URL+"/taxa/v1/taxa/banana", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
