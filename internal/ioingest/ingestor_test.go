package ioingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gnames/gnfacet/internal/ioingest"
	"github.com/gnames/gnfacet/internal/iomem"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned envelopes and counts fetches per id.
type fakeSource struct {
	mu      sync.Mutex
	records map[int64]taxon.SourceRecord
	broken  map[int64]bool
	fetches map[int64]int
}

func newFakeSource(recs ...taxon.SourceRecord) *fakeSource {
	f := &fakeSource{
		records: make(map[int64]taxon.SourceRecord),
		broken:  make(map[int64]bool),
		fetches: make(map[int64]int),
	}
	for _, r := range recs {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeSource) Fetch(
	ctx context.Context,
	extID int64,
) (*taxon.SourceEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[extID]++
	if f.broken[extID] {
		return nil, errors.New("boom")
	}
	rec, ok := f.records[extID]
	if !ok {
		return &taxon.SourceEnvelope{}, nil
	}
	return &taxon.SourceEnvelope{
		Results: []taxon.SourceRecord{rec},
	}, nil
}

func (f *fakeSource) fetchCount(extID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[extID]
}

func children(ids ...int64) []taxon.SourceChild {
	res := make([]taxon.SourceChild, len(ids))
	for i, id := range ids {
		res[i] = taxon.SourceChild{ID: id}
	}
	return res
}

func newIngestor(
	src ioingest.Fetcher,
	store gnfacet.Store,
) gnfacet.Ingestor {
	cfg := config.New()
	cfg.Ingest.BatchSize = 100
	return ioingest.New(store, src, nil, cfg)
}

func TestInitializeRoot(t *testing.T) {
	src := newFakeSource(taxon.SourceRecord{
		ID:                  3,
		Name:                "Aves",
		Rank:                "class",
		PreferredCommonName: "Birds",
		Children:            children(7251, 573),
	})
	store := iomem.New()
	ing := newIngestor(src, store)
	ctx := context.Background()

	n, err := ing.InitializeRoot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.TaxonByExternalID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Birds", got.CommonName)
	assert.Equal(t, "Aves", got.CanonicalName)
	assert.NotEmpty(t, got.UUID)
	assert.Equal(t, 2, got.PendingCount())
}

func TestIngestOneIdempotent(t *testing.T) {
	src := newFakeSource(taxon.SourceRecord{
		ID: 13858, Name: "Passer domesticus", Rank: "species",
	})
	store := iomem.New()
	ing := newIngestor(src, store)
	ctx := context.Background()

	ok, err := ing.IngestOne(ctx, 13858, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ing.IngestOne(ctx, 13858, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	first, err := store.TaxonByExternalID(ctx, 13858)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(3), first.ParentID)
}

func TestIngestOneUnparseableRecord(t *testing.T) {
	src := newFakeSource() // empty envelope for every id
	store := iomem.New()
	ing := newIngestor(src, store)

	ok, err := ing.IngestOne(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessPendingBatchBudget(t *testing.T) {
	src := newFakeSource(
		taxon.SourceRecord{
			ID: 1, Name: "Passeridae", Rank: "family",
			Children: children(11, 12, 13),
		},
		taxon.SourceRecord{ID: 11, Name: "Passer domesticus"},
		taxon.SourceRecord{ID: 12, Name: "Passer montanus"},
		taxon.SourceRecord{ID: 13, Name: "Passer italiae"},
	)
	store := iomem.New()
	ing := newIngestor(src, store)
	ctx := context.Background()

	_, err := ing.InitializeRoot(ctx, 1)
	require.NoError(t, err)

	// budget 2: stops mid-parent
	stats, err := ing.ProcessPendingBatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Ingested)

	parent, err := store.TaxonByExternalID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, parent.PendingCount())

	// next run drains the rest
	stats, err = ing.ProcessPendingBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	parent, err = store.TaxonByExternalID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, parent.PendingCount())

	// nothing pending: a further run is a no-op
	stats, err = ing.ProcessPendingBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 0, stats.Parents)
}

func TestProcessPendingExistingChildNotRefetched(t *testing.T) {
	src := newFakeSource(
		taxon.SourceRecord{
			ID: 1, Name: "Passeridae", Rank: "family",
			Children: children(11),
		},
		taxon.SourceRecord{ID: 11, Name: "Passer domesticus"},
	)
	store := iomem.New()
	ing := newIngestor(src, store)
	ctx := context.Background()

	// child already ingested before the batch runs
	ok, err := ing.IngestOne(ctx, 11, 1)
	require.NoError(t, err)
	require.True(t, ok)
	fetched := src.fetchCount(11)

	_, err = ing.InitializeRoot(ctx, 1)
	require.NoError(t, err)

	stats, err := ing.ProcessPendingBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Ingested)
	assert.Equal(t, fetched, src.fetchCount(11), "no refetch")
}

func TestProcessPendingMarkedProcessedOnFailure(t *testing.T) {
	src := newFakeSource(
		taxon.SourceRecord{
			ID: 1, Name: "Passeridae", Rank: "family",
			Children: children(11),
		},
	)
	src.broken[11] = true
	store := iomem.New()
	ing := newIngestor(src, store)
	ctx := context.Background()

	_, err := ing.InitializeRoot(ctx, 1)
	require.NoError(t, err)

	stats, err := ing.ProcessPendingBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Failed)

	parent, err := store.TaxonByExternalID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, parent.PendingCount(), "child abandoned")
	require.Len(t, parent.PendingChildren, 1)
	assert.Equal(t, 1, parent.PendingChildren[0].FetchTries)
}

func TestResponseCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.db")
	cache, err := ioingest.OpenCache(path)
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.Get(42)
	assert.False(t, ok)

	body := []byte(`{"results":[{"id":42,"name":"Aves"}]}`)
	require.NoError(t, cache.Put(42, body))

	got, ok := cache.Get(42)
	require.True(t, ok)
	assert.Equal(t, body, got)

	// replace
	require.NoError(t, cache.Put(42, []byte(`{}`)))
	got, _ = cache.Get(42)
	assert.Equal(t, []byte(`{}`), got)
}
