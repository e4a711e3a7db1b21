// Package taxon defines the catalog entity types shared by the
// ingestion pipeline, the facet row builder and the search API.
package taxon

import (
	"time"
)

// PendingChildRef tracks one declared child of a taxon that the
// ingestion pipeline still has to visit. Processed is monotonic
// false→true and never reverts; FetchTries counts fetch attempts so
// operators can find children abandoned after a failed fetch.
type PendingChildRef struct {
	ExternalID int64 `json:"external_id"`
	Processed  bool  `json:"processed"`
	FetchTries int   `json:"fetch_tries,omitempty"`
}

// Taxon is one catalog entity. It is created and updated only by the
// ingestion pipeline; a taxon is written only after a fully parsed
// source record is available.
type Taxon struct {
	// ID is the internal surrogate key.
	ID int64

	// ExternalID is the id of the record in the external taxonomy
	// source; ingestion is idempotent on it.
	ExternalID int64

	// UUID is a stable v5 identifier derived from the scientific name.
	UUID string

	// Name is the scientific name as given by the source.
	Name string

	// CanonicalName is the parsed canonical form of Name, used for
	// title ordering; empty when the name did not parse.
	CanonicalName string

	// CommonName is the preferred vernacular name, may be empty.
	CommonName string

	// Rank is a free-form rank string, e.g. "species".
	Rank string

	// ParentID is the external id of the parent taxon, 0 for roots.
	ParentID int64

	// Ancestry is the source's ancestor id path, e.g. "48460/1/2".
	Ancestry string

	// Extinct marks taxa excluded from search results by default.
	Extinct bool

	ConservationStatus string

	// Link points at the taxon's reference page.
	Link string

	// Excerpt is a short description used in result cards.
	Excerpt string

	// Image is the URL of the representative photo.
	Image string

	// PendingChildren is the ordered pending-children queue seeded at
	// ingest time from the source's declared children.
	PendingChildren []PendingChildRef

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Title returns the display title of a taxon: the vernacular name when
// one exists, the scientific name otherwise.
func (t *Taxon) Title() string {
	if t.CommonName != "" {
		return t.CommonName
	}
	return t.Name
}

// SortName returns the name used for title ordering: the canonical
// form when the scientific name parsed, the display title otherwise.
func (t *Taxon) SortName() string {
	if t.CanonicalName != "" {
		return t.CanonicalName
	}
	return t.Title()
}

// PendingCount returns how many children are still unprocessed.
func (t *Taxon) PendingCount() int {
	var n int
	for i := range t.PendingChildren {
		if !t.PendingChildren[i].Processed {
			n++
		}
	}
	return n
}
