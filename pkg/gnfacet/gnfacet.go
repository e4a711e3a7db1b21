// Package gnfacet defines the component interfaces of the faceted
// taxon catalog: storage, schema lifecycle, ingestion, classification
// and popularity rollup. Implementations live under internal/io*.
package gnfacet

import (
	"context"
	"time"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/query"
	"github.com/gnames/gnfacet/pkg/taxon"
)

// Store is the catalog's record store: taxa, compact facet rows, view
// buckets and persisted facet layouts. Both the PostgreSQL and the
// in-memory implementations honor the same semantics; per-row writes
// are atomic, no cross-row transactions are required.
type Store interface {
	// UpsertTaxon creates or updates a taxon looked up by external id
	// and returns its internal id. Re-ingesting updates rather than
	// duplicates.
	UpsertTaxon(ctx context.Context, t *taxon.Taxon) (int64, error)

	// TaxonByExternalID returns the taxon for an external source id,
	// or (nil, nil) when it does not exist.
	TaxonByExternalID(ctx context.Context, extID int64) (*taxon.Taxon, error)

	// TaxonByID returns the taxon for an internal id, or (nil, nil).
	TaxonByID(ctx context.Context, id int64) (*taxon.Taxon, error)

	// PendingParents returns up to limit taxa that still have at
	// least one unprocessed pending child.
	PendingParents(ctx context.Context, limit int) ([]*taxon.Taxon, error)

	// SetPendingChildren replaces a taxon's pending-children queue.
	// Processed flags only move false→true through this call.
	SetPendingChildren(
		ctx context.Context, taxonID int64, refs []taxon.PendingChildRef,
	) error

	// FacetRow returns the stored compact record for a taxon and
	// scope, or (nil, nil) when absent.
	FacetRow(ctx context.Context, taxonID int64, scope string) (*facet.Row, error)

	// UpsertFacetRow writes the full row in one atomic write. Sticky
	// fields are expected to be resolved by facet.MergeRow before the
	// call; the PostgreSQL implementation additionally guards them in
	// SQL so concurrent upserts cannot blank them.
	UpsertFacetRow(ctx context.Context, row *facet.Row) error

	// Search executes a compiled plan and returns one page of items
	// plus the exact total count.
	Search(ctx context.Context, plan *query.Plan) (*query.Result, error)

	// RecordView atomically increments the taxon's popularity counter
	// and last-viewed timestamp on every scope's row, and
	// upsert-increments the taxon's daily view bucket.
	RecordView(ctx context.Context, taxonID int64, at time.Time) error

	// RollupPopularity recomputes every row's popularity as the sum
	// of its buckets over the trailing windowDays, replacing the
	// lifetime counter so old spikes decay. Returns the number of
	// rows updated.
	RollupPopularity(
		ctx context.Context, now time.Time, windowDays int,
	) (int, error)

	// FacetLayouts returns the persisted vocabulary layouts:
	// scope → facet key → ordered slugs.
	FacetLayouts(
		ctx context.Context,
	) (map[string]map[facet.Key][]string, error)

	// SaveFacetLayout persists the ordered slug list of one
	// scope+key vocabulary.
	SaveFacetLayout(
		ctx context.Context, scope string, key facet.Key, slugs []string,
	) error
}

// SchemaManager handles database schema lifecycle operations.
type SchemaManager interface {
	// Create creates the initial database schema.
	Create(ctx context.Context, cfg *config.Config) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context, cfg *config.Config) error
}

// Vocabulary is the allowed-token table handed to the classifier: the
// ordered slugs of every facet key in the active scope.
type Vocabulary map[facet.Key][]string

// Classifier proposes facet slugs for a taxon title. It is a black
// box: any unparsable reply yields (nil, nil) and the caller keeps the
// stored row untouched.
type Classifier interface {
	Classify(
		ctx context.Context, title string, vocab Vocabulary,
	) (*facet.Proposal, error)
}

// BatchStats reports one process-pending run.
type BatchStats struct {
	// Parents is how many candidate parents were scanned.
	Parents int
	// Processed is how many pending children were handled, fetch
	// failures included.
	Processed int
	// Ingested is how many new taxa were written.
	Ingested int
	// Failed is how many children were marked processed after a
	// failed fetch.
	Failed int
}

// Ingestor populates the catalog from the external taxonomy source.
type Ingestor interface {
	// InitializeRoot fetches the record for id and ingests every
	// returned node, seeding pending-children queues. Returns the
	// number of taxa ingested.
	InitializeRoot(ctx context.Context, id int64) (int, error)

	// ProcessPendingBatch handles at most maxItems pending children
	// across the scanned parents, stopping mid-parent once the budget
	// is exhausted. Safe to invoke concurrently; an already processed
	// child is a no-op.
	ProcessPendingBatch(ctx context.Context, maxItems int) (*BatchStats, error)

	// IngestOne idempotently ingests a single external record.
	// Returns false, without error, when the source could not deliver
	// a parseable record.
	IngestOne(ctx context.Context, id, parentID int64) (bool, error)
}

// Rollup recomputes windowed popularity scores.
type Rollup interface {
	// Run performs one rollup pass and returns the number of rows
	// updated.
	Run(ctx context.Context) (int, error)
}
