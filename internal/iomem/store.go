// Package iomem implements the Store interface in process memory. It
// backs unit tests and the demo server mode; the semantics mirror the
// PostgreSQL store, including the reference predicate evaluation from
// pkg/query.
package iomem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/query"
	"github.com/gnames/gnfacet/pkg/taxon"
)

type rowKey struct {
	taxonID int64
	scope   string
}

type bucketKey struct {
	taxonID int64
	day     string
}

type store struct {
	mu sync.RWMutex

	nextID  int64
	taxa    map[int64]*taxon.Taxon
	byExtID map[int64]int64
	rows    map[rowKey]*facet.Row
	buckets map[bucketKey]int64
	layouts map[string]map[facet.Key][]string
}

// New returns an empty in-memory store.
func New() gnfacet.Store {
	return &store{
		taxa:    make(map[int64]*taxon.Taxon),
		byExtID: make(map[int64]int64),
		rows:    make(map[rowKey]*facet.Row),
		buckets: make(map[bucketKey]int64),
		layouts: make(map[string]map[facet.Key][]string),
	}
}

func (s *store) UpsertTaxon(
	ctx context.Context,
	t *taxon.Taxon,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if id, ok := s.byExtID[t.ExternalID]; ok {
		stored := s.taxa[id]
		cp := *t
		cp.ID = id
		cp.CreatedAt = stored.CreatedAt
		cp.UpdatedAt = now
		if len(cp.PendingChildren) == 0 {
			cp.PendingChildren = stored.PendingChildren
		}
		s.taxa[id] = &cp
		return id, nil
	}

	s.nextID++
	cp := *t
	cp.ID = s.nextID
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.taxa[cp.ID] = &cp
	s.byExtID[cp.ExternalID] = cp.ID
	return cp.ID, nil
}

func (s *store) TaxonByExternalID(
	ctx context.Context,
	extID int64,
) (*taxon.Taxon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExtID[extID]
	if !ok {
		return nil, nil
	}
	cp := *s.taxa[id]
	return &cp, nil
}

func (s *store) TaxonByID(
	ctx context.Context,
	id int64,
) (*taxon.Taxon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.taxa[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *store) PendingParents(
	ctx context.Context,
	limit int,
) ([]*taxon.Taxon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*taxon.Taxon
	for _, t := range s.taxa {
		if t.PendingCount() > 0 {
			cp := *t
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *store) SetPendingChildren(
	ctx context.Context,
	taxonID int64,
	refs []taxon.PendingChildRef,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.taxa[taxonID]
	if !ok {
		return UnknownTaxonError(taxonID)
	}
	t.PendingChildren = append([]taxon.PendingChildRef(nil), refs...)
	t.UpdatedAt = time.Now()
	return nil
}

func (s *store) FacetRow(
	ctx context.Context,
	taxonID int64,
	scope string,
) (*facet.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[rowKey{taxonID, scope}]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (s *store) UpsertFacetRow(
	ctx context.Context,
	row *facet.Row,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *row
	s.rows[rowKey{row.TaxonID, row.Scope}] = &cp
	return nil
}

func (s *store) Search(
	ctx context.Context,
	plan *query.Plan,
) (*query.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []query.Item
	for key, row := range s.rows {
		if key.scope != plan.Scope {
			continue
		}
		if !plan.MatchCodes(&row.Codes) {
			continue
		}
		t, ok := s.taxa[key.taxonID]
		if !ok {
			continue
		}
		if !plan.MatchTaxon(t, row.Rank, row.Extinct) {
			continue
		}
		items = append(items, query.Item{Taxon: *t, Row: *row})
	}

	sortItems(items, plan.Sort)

	total := len(items)
	off := plan.Offset()
	if off > total {
		off = total
	}
	end := off + plan.PerPage
	if end > total {
		end = total
	}

	return &query.Result{
		Items:   items[off:end],
		Total:   total,
		Page:    plan.Page,
		PerPage: plan.PerPage,
	}, nil
}

// sortItems mirrors the ORDER BY clauses of the PostgreSQL store.
func sortItems(items []query.Item, mode query.SortMode) {
	titleLess := func(a, b *query.Item) bool {
		an := strings.ToLower(a.Taxon.SortName())
		bn := strings.ToLower(b.Taxon.SortName())
		if an != bn {
			return an < bn
		}
		return a.Taxon.ID < b.Taxon.ID
	}

	switch mode {
	case query.SortTitle:
		sort.Slice(items, func(i, j int) bool {
			return titleLess(&items[i], &items[j])
		})
	case query.SortNewest:
		sort.Slice(items, func(i, j int) bool {
			a, b := &items[i], &items[j]
			if !a.Taxon.CreatedAt.Equal(b.Taxon.CreatedAt) {
				return a.Taxon.CreatedAt.After(b.Taxon.CreatedAt)
			}
			return a.Taxon.ID > b.Taxon.ID
		})
	default:
		sort.Slice(items, func(i, j int) bool {
			a, b := &items[i], &items[j]
			if a.Row.Popularity != b.Row.Popularity {
				return a.Row.Popularity > b.Row.Popularity
			}
			if !a.Row.LastViewed.Equal(b.Row.LastViewed) {
				return a.Row.LastViewed.After(b.Row.LastViewed)
			}
			return titleLess(a, b)
		})
	}
}

func (s *store) RecordView(
	ctx context.Context,
	taxonID int64,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched int
	for key, row := range s.rows {
		if key.taxonID != taxonID {
			continue
		}
		row.Popularity++
		if at.After(row.LastViewed) {
			row.LastViewed = at
		}
		touched++
	}

	// first touch of a taxon without a row seeds a global-scope one
	if touched == 0 {
		s.rows[rowKey{taxonID, ""}] = &facet.Row{
			TaxonID:    taxonID,
			Popularity: 1,
			LastViewed: at,
		}
	}

	day := at.UTC().Format("2006-01-02")
	s.buckets[bucketKey{taxonID, day}]++
	return nil
}

func (s *store) RollupPopularity(
	ctx context.Context,
	now time.Time,
	windowDays int,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.UTC().AddDate(0, 0, -windowDays).Format("2006-01-02")

	sums := make(map[int64]int64)
	for key, count := range s.buckets {
		if key.day >= cutoff {
			sums[key.taxonID] += count
		}
	}

	var updated int
	for key, row := range s.rows {
		score := sums[key.taxonID]
		if row.Popularity != score {
			row.Popularity = score
			updated++
		}
	}
	return updated, nil
}

func (s *store) FacetLayouts(
	ctx context.Context,
) (map[string]map[facet.Key][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make(map[string]map[facet.Key][]string, len(s.layouts))
	for scope, byKey := range s.layouts {
		cp := make(map[facet.Key][]string, len(byKey))
		for key, slugs := range byKey {
			cp[key] = append([]string(nil), slugs...)
		}
		res[scope] = cp
	}
	return res, nil
}

func (s *store) SaveFacetLayout(
	ctx context.Context,
	scope string,
	key facet.Key,
	slugs []string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.layouts[scope]
	if !ok {
		byKey = make(map[facet.Key][]string)
		s.layouts[scope] = byKey
	}
	byKey[key] = append([]string(nil), slugs...)
	return nil
}
