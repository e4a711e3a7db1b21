// Package ioingest implements the ingestion pipeline: it pulls taxon
// records from the external source in bounded batches, writes catalog
// entities, seeds pending-children queues and triggers facet-row
// builds. Every operation is idempotent on the external id, so cron
// and manual triggers may overlap safely.
package ioingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfacet/internal/iorow"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/taxon"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnuuid"
	"golang.org/x/sync/errgroup"
)

type ingestor struct {
	store   gnfacet.Store
	source  Fetcher
	builder *iorow.Builder
	cfg     *config.Config
	parsers sync.Pool

	// mu serializes pending-queue writes per batch so concurrent child
	// results do not clobber each other's processed flags.
	mu sync.Mutex
}

// New creates the ingestion pipeline. The builder may be nil; taxa are
// then ingested without facet rows (useful for dry runs).
func New(
	store gnfacet.Store,
	source Fetcher,
	builder *iorow.Builder,
	cfg *config.Config,
) gnfacet.Ingestor {
	return &ingestor{
		store:   store,
		source:  source,
		builder: builder,
		cfg:     cfg,
		parsers: sync.Pool{
			New: func() any {
				return gnparser.New(gnparser.NewConfig())
			},
		},
	}
}

// InitializeRoot fetches the record for id and ingests every node the
// source returns, seeding pending-children queues.
func (ing *ingestor) InitializeRoot(
	ctx context.Context,
	id int64,
) (int, error) {
	env, err := ing.source.Fetch(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(env.Results) == 0 {
		return 0, EmptyEnvelopeError(id)
	}

	bar := pb.StartNew(len(env.Results))
	defer bar.Finish()

	var count int
	for i := range env.Results {
		if err := ing.ingestRecord(ctx, &env.Results[i], 0); err != nil {
			return count, err
		}
		count++
		bar.Increment()
	}

	slog.Info("Initialized subtree",
		"rootID", id, "taxa", humanize.Comma(int64(count)))
	return count, nil
}

// ProcessPendingBatch drains up to maxItems pending children across
// the scanned parents, stopping mid-parent once the budget runs out.
func (ing *ingestor) ProcessPendingBatch(
	ctx context.Context,
	maxItems int,
) (*gnfacet.BatchStats, error) {
	stats := &gnfacet.BatchStats{}
	if maxItems <= 0 {
		return stats, nil
	}

	parents, err := ing.store.PendingParents(
		ctx, ing.cfg.Ingest.ParentScanLimit)
	if err != nil {
		return nil, err
	}
	stats.Parents = len(parents)

	budget := maxItems
	for _, parent := range parents {
		if budget == 0 {
			break
		}
		done, err := ing.processParent(ctx, parent, budget, stats)
		if err != nil {
			return stats, err
		}
		budget -= done
	}

	slog.Info("Processed pending batch",
		"parents", stats.Parents,
		"processed", stats.Processed,
		"ingested", stats.Ingested,
		"failed", stats.Failed,
	)
	return stats, nil
}

// processParent handles up to budget pending children of one parent
// and persists the updated queue. Returns how many children were
// handled.
func (ing *ingestor) processParent(
	ctx context.Context,
	parent *taxon.Taxon,
	budget int,
	stats *gnfacet.BatchStats,
) (int, error) {
	refs := parent.PendingChildren

	// indexes of the children this run will take on
	var picked []int
	for i := range refs {
		if len(picked) == budget {
			break
		}
		if !refs[i].Processed {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.cfg.JobsNumber)

	for _, i := range picked {
		g.Go(func() error {
			ref := &refs[i]
			extID := ref.ExternalID

			existing, err := ing.store.TaxonByExternalID(gctx, extID)
			if err != nil {
				return err
			}

			ing.mu.Lock()
			ref.Processed = true
			ing.mu.Unlock()

			if existing != nil {
				return nil
			}

			ing.mu.Lock()
			ref.FetchTries++
			ing.mu.Unlock()

			ok, err := ing.IngestOne(gctx, extID, parent.ExternalID)
			if err != nil {
				return err
			}

			ing.mu.Lock()
			if ok {
				stats.Ingested++
			} else {
				// abandoned after a failed fetch; FetchTries keeps
				// the evidence for operators
				stats.Failed++
			}
			ing.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	stats.Processed += len(picked)

	err := ing.store.SetPendingChildren(ctx, parent.ID, refs)
	if err != nil {
		return 0, err
	}
	return len(picked), nil
}

// IngestOne idempotently ingests a single external record. Fetch and
// decode failures are logged and reported as (false, nil): the source
// could not deliver a parseable record, which is not fatal to a batch.
func (ing *ingestor) IngestOne(
	ctx context.Context,
	id, parentID int64,
) (bool, error) {
	env, err := ing.source.Fetch(ctx, id)
	if err != nil {
		slog.Warn("Cannot fetch source record",
			"externalID", id, "error", err)
		return false, nil
	}

	var rec *taxon.SourceRecord
	for i := range env.Results {
		if env.Results[i].ID == id {
			rec = &env.Results[i]
			break
		}
	}
	if rec == nil {
		slog.Warn("Source envelope misses the requested record",
			"externalID", id)
		return false, nil
	}

	if err := ing.ingestRecord(ctx, rec, parentID); err != nil {
		return false, err
	}
	return true, nil
}

// ingestRecord writes one fully parsed source record: taxon upsert,
// pending-children seeding and the facet-row build.
func (ing *ingestor) ingestRecord(
	ctx context.Context,
	rec *taxon.SourceRecord,
	parentID int64,
) error {
	if rec.ParentID != 0 {
		parentID = rec.ParentID
	}

	t := &taxon.Taxon{
		ExternalID:         rec.ID,
		UUID:               gnuuid.New(rec.Name).String(),
		Name:               rec.Name,
		CanonicalName:      ing.canonical(rec.Name),
		CommonName:         rec.PreferredCommonName,
		Rank:               rec.Rank,
		ParentID:           parentID,
		Ancestry:           rec.Ancestry,
		Extinct:            rec.Extinct,
		ConservationStatus: rec.ConservationStatus,
		Link:               rec.WikipediaURL,
		Excerpt:            rec.WikipediaSummary,
		Image:              rec.PhotoURL(),
		PendingChildren:    ing.seedChildren(ctx, rec),
	}

	id, err := ing.store.UpsertTaxon(ctx, t)
	if err != nil {
		return err
	}
	t.ID = id

	if ing.builder == nil {
		return nil
	}
	return ing.builder.Build(ctx, t, nil, nil)
}

// seedChildren builds the pending queue from the record's declared
// children, carrying over flags of children already known from an
// earlier ingest so re-ingesting never resurrects processed entries.
func (ing *ingestor) seedChildren(
	ctx context.Context,
	rec *taxon.SourceRecord,
) []taxon.PendingChildRef {
	ids := rec.ChildIDs()
	if len(ids) == 0 {
		return nil
	}

	known := make(map[int64]taxon.PendingChildRef)
	if existing, err := ing.store.TaxonByExternalID(ctx, rec.ID); err == nil &&
		existing != nil {
		for _, ref := range existing.PendingChildren {
			known[ref.ExternalID] = ref
		}
	}

	refs := make([]taxon.PendingChildRef, 0, len(ids))
	for _, id := range ids {
		if old, ok := known[id]; ok {
			refs = append(refs, old)
			continue
		}
		refs = append(refs, taxon.PendingChildRef{ExternalID: id})
	}
	return refs
}

// canonical extracts the canonical name form, empty when the
// scientific name does not parse.
func (ing *ingestor) canonical(name string) string {
	p := ing.parsers.Get().(gnparser.GNparser)
	defer ing.parsers.Put(p)

	parsed := p.ParseName(name)
	if !parsed.Parsed || parsed.Canonical == nil {
		return ""
	}
	return parsed.Canonical.Simple
}
