package ioserver

import (
	"strings"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/query"
	"github.com/gnames/gnfacet/pkg/taxon"
)

// SearchItem is one result card.
type SearchItem struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Link               string   `json:"link,omitempty"`
	Excerpt            string   `json:"excerpt,omitempty"`
	Image              string   `json:"image,omitempty"`
	ConservationStatus string   `json:"conservation_status,omitempty"`
	Facets             []string `json:"facets"`
	TaxaRank           string   `json:"taxa_rank,omitempty"`
	Extinct            bool     `json:"extinct"`
}

// SearchResponse is one page of results with the exact total.
type SearchResponse struct {
	Items   []SearchItem `json:"items"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// TaxonResponse is the detail payload of one taxon.
type TaxonResponse struct {
	SearchItem
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name,omitempty"`
	CommonName    string `json:"common_name,omitempty"`
	Ancestry      string `json:"ancestry,omitempty"`
	UUID          string `json:"uuid,omitempty"`
}

func (s *Server) searchResponse(res *query.Result) SearchResponse {
	out := SearchResponse{
		Items:   make([]SearchItem, 0, len(res.Items)),
		Total:   res.Total,
		Page:    res.Page,
		PerPage: res.PerPage,
	}
	for i := range res.Items {
		item := &res.Items[i]
		out.Items = append(out.Items,
			s.searchItem(&item.Taxon, &item.Row))
	}
	return out
}

func (s *Server) searchItem(t *taxon.Taxon, row *facet.Row) SearchItem {
	res := SearchItem{
		ID:                 t.ID,
		Title:              t.Title(),
		Link:               t.Link,
		Excerpt:            t.Excerpt,
		Image:              t.Image,
		ConservationStatus: t.ConservationStatus,
		Facets:             []string{},
		Extinct:            t.Extinct,
	}
	if row != nil {
		res.Facets = s.facetSummary(row)
		res.TaxaRank = row.Rank
		res.Extinct = row.Extinct
	}
	if res.TaxaRank == "" {
		res.TaxaRank = t.Rank
	}
	return res
}

func (s *Server) taxonResponse(t *taxon.Taxon, row *facet.Row) TaxonResponse {
	return TaxonResponse{
		SearchItem:    s.searchItem(t, row),
		Name:          t.Name,
		CanonicalName: t.CanonicalName,
		CommonName:    t.CommonName,
		Ancestry:      t.Ancestry,
		UUID:          t.UUID,
	}
}

// facetSummary renders human-readable lines like "Colors: Red, Blue"
// from a row's encoded facets, in canonical key order.
func (s *Server) facetSummary(row *facet.Row) []string {
	res := []string{}
	scope := s.cfg.Scope

	for _, key := range facet.EnumKeys() {
		code := row.Enum(key)
		if code == 0 {
			continue
		}
		if opt, ok := s.reg.Decode(scope, key, code); ok {
			res = append(res, keyTitle(key)+": "+opt.Label)
		}
	}

	for _, key := range facet.MaskKeys() {
		mask := row.Mask(key)
		if mask == 0 {
			continue
		}
		opts := s.reg.DecodeMask(scope, key, mask)
		if len(opts) == 0 {
			continue
		}
		labels := make([]string, len(opts))
		for i, opt := range opts {
			labels[i] = opt.Label
		}
		res = append(res, keyTitle(key)+": "+strings.Join(labels, ", "))
	}

	return res
}

// keyTitle renders a facet key for display: "call_types" → "Call Types".
func keyTitle(key facet.Key) string {
	words := strings.Split(string(key), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
