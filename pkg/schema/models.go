// Package schema provides database schema models for GNfacet.
package schema

import (
	"database/sql"
	"time"
)

// DDLGenerator defines how Go models generate PostgreSQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the PostgreSQL table name for this model.
	TableName() string
}

// Taxon is one catalog entity ingested from the external taxonomy
// source. Only the ingestion pipeline writes this table.
type Taxon struct {
	// ID is the internal surrogate key.
	ID int64 `db:"id" gorm:"primaryKey;autoIncrement" ddl:"BIGSERIAL PRIMARY KEY"`

	// ExternalID is the record id in the external source; ingestion
	// upserts are idempotent on it.
	ExternalID int64 `db:"external_id" gorm:"uniqueIndex" ddl:"BIGINT NOT NULL UNIQUE"`

	// UUID is a v5 identifier derived from the scientific name.
	UUID string `db:"uuid" ddl:"UUID DEFAULT '00000000-0000-0000-0000-000000000000'"`

	// Name is the scientific name as given by the source.
	Name string `db:"name" ddl:"VARCHAR(255) NOT NULL"`

	// CanonicalName is the parsed canonical form used for title sort.
	CanonicalName string `db:"canonical_name" ddl:"VARCHAR(255)"`

	// CommonName is the preferred vernacular name.
	CommonName string `db:"common_name" ddl:"VARCHAR(255)"`

	// Rank is a free-form rank string, e.g. "species".
	Rank string `db:"rank" ddl:"VARCHAR(255)"`

	// ParentID is the external id of the parent taxon.
	ParentID int64 `db:"parent_id" ddl:"BIGINT"`

	// Ancestry is the ancestor id path from the source.
	Ancestry string `db:"ancestry" ddl:"TEXT"`

	// Extinct taxa are excluded from search by default.
	Extinct bool `db:"extinct" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`

	ConservationStatus string `db:"conservation_status" ddl:"VARCHAR(100)"`

	// Link is the reference page URL.
	Link string `db:"link" ddl:"TEXT"`

	// Excerpt is a short description for result cards.
	Excerpt string `db:"excerpt" ddl:"TEXT"`

	// Image is the representative photo URL.
	Image string `db:"image" ddl:"TEXT"`

	// PendingChildren is the JSON-encoded pending-children queue.
	PendingChildren []byte `db:"pending_children" gorm:"type:jsonb" ddl:"JSONB"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW()"`
	UpdatedAt time.Time `db:"updated_at" ddl:"TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW()"`
}

// FacetRow is the compact per-taxon facet record, one per taxon per
// scope. Enum facets hold 1+index codes, mask facets one bit per slug.
type FacetRow struct {
	// TaxonID refers to the internal taxon id.
	TaxonID int64 `db:"taxon_id" gorm:"primaryKey;autoIncrement:false" ddl:"BIGINT NOT NULL"`

	// Scope names the facet vocabulary overlay this row was encoded
	// against; empty string is the global scope.
	Scope string `db:"scope" gorm:"primaryKey" ddl:"VARCHAR(100) NOT NULL DEFAULT ''"`

	Size           int64 `db:"size" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	ShapePrimary   int64 `db:"shape_primary" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	ShapeSecondary int64 `db:"shape_secondary" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	Pattern        int64 `db:"pattern" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	TraitPrimary   int64 `db:"trait_primary" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	TraitSecondary int64 `db:"trait_secondary" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	Diet           int64 `db:"diet" ddl:"SMALLINT NOT NULL DEFAULT 0"`

	ColorMask    int64 `db:"color_mask" ddl:"BIGINT NOT NULL DEFAULT 0"`
	BehaviorMask int64 `db:"behavior_mask" ddl:"BIGINT NOT NULL DEFAULT 0"`
	HabitatMask  int64 `db:"habitat_mask" ddl:"BIGINT NOT NULL DEFAULT 0"`
	CallTypeMask int64 `db:"call_type_mask" ddl:"BIGINT NOT NULL DEFAULT 0"`

	// Rank is sticky: upserts never blank a stored value.
	Rank sql.NullString `db:"rank" ddl:"VARCHAR(255)"`

	// Extinct is sticky the same way.
	Extinct bool `db:"extinct" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`

	// Popularity is the trailing-window view score.
	Popularity int64 `db:"popularity" ddl:"BIGINT NOT NULL DEFAULT 0"`

	// LastViewed is NULL for rows never viewed.
	LastViewed sql.NullTime `db:"last_viewed" ddl:"TIMESTAMP WITHOUT TIME ZONE"`

	// FamilyID and RegionID are auxiliary foreign keys preserved
	// across upserts unless a new non-null value arrives.
	FamilyID sql.NullInt64 `db:"family_id" ddl:"BIGINT"`
	RegionID sql.NullInt64 `db:"region_id" ddl:"BIGINT"`
}

// ViewBucket is one day's view counter for one taxon, the source of
// the trailing-30-day popularity rollup.
type ViewBucket struct {
	// TaxonID refers to the internal taxon id.
	TaxonID int64 `db:"taxon_id" gorm:"primaryKey;autoIncrement:false" ddl:"BIGINT NOT NULL"`

	// Day is the bucket date, UTC.
	Day time.Time `db:"day" gorm:"primaryKey;type:date" ddl:"DATE NOT NULL"`

	// ViewCount accumulates views within the day.
	ViewCount int64 `db:"view_count" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// FacetLayout persists the slug order of one scope+key vocabulary so a
// restart can detect a forbidden insert, removal or reorder before any
// row is encoded against moved codes.
type FacetLayout struct {
	// Scope of the vocabulary, empty string for global.
	Scope string `db:"scope" gorm:"primaryKey" ddl:"VARCHAR(100) NOT NULL DEFAULT ''"`

	// FacetKey is the facet dimension, e.g. "colors".
	FacetKey string `db:"facet_key" gorm:"primaryKey" ddl:"VARCHAR(50) NOT NULL"`

	// Slugs is the newline-joined ordered slug list.
	Slugs string `db:"slugs" ddl:"TEXT NOT NULL"`

	UpdatedAt time.Time `db:"updated_at" ddl:"TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW()"`
}
