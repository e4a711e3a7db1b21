// Package iostore implements the Store interface on PostgreSQL via
// pgx. Facet predicates render to bitwise SQL over the compact
// facet_rows table; all sticky-field rules are additionally guarded in
// the upsert statements so concurrent writers cannot blank them.
package iostore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gnames/gnfacet/pkg/db"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfacet/pkg/taxon"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type store struct {
	op db.Operator

	// popular sort degrades to title order when the popularity columns
	// are missing. The probe result is cached only on success, so a
	// canceled or failing first request cannot pin the degraded order
	// for the process lifetime.
	probeMu  sync.Mutex
	popProbe probeState
}

type probeState int

const (
	probeUnknown probeState = iota
	probePresent
	probeAbsent
)

// New creates a PostgreSQL-backed Store over a connected operator.
func New(op db.Operator) gnfacet.Store {
	return &store{op: op}
}

func (s *store) pool() (*pgxpool.Pool, error) {
	p := s.op.Pool()
	if p == nil {
		return nil, NotConnectedError()
	}
	return p, nil
}

const taxonColumns = `id, external_id, uuid, name, canonical_name,
common_name, rank, parent_id, ancestry, extinct, conservation_status,
link, excerpt, image, pending_children, created_at, updated_at`

func (s *store) UpsertTaxon(
	ctx context.Context,
	t *taxon.Taxon,
) (int64, error) {
	p, err := s.pool()
	if err != nil {
		return 0, err
	}

	pending, err := encodePending(t.PendingChildren)
	if err != nil {
		return 0, err
	}

	// A re-ingest without children must not wipe an existing queue.
	q := `
		INSERT INTO taxa (
			external_id, uuid, name, canonical_name, common_name, rank,
			parent_id, ancestry, extinct, conservation_status, link,
			excerpt, image, pending_children, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			NOW(), NOW()
		)
		ON CONFLICT (external_id) DO UPDATE SET
			uuid = EXCLUDED.uuid,
			name = EXCLUDED.name,
			canonical_name = EXCLUDED.canonical_name,
			common_name = EXCLUDED.common_name,
			rank = EXCLUDED.rank,
			parent_id = EXCLUDED.parent_id,
			ancestry = EXCLUDED.ancestry,
			extinct = EXCLUDED.extinct,
			conservation_status = EXCLUDED.conservation_status,
			link = EXCLUDED.link,
			excerpt = EXCLUDED.excerpt,
			image = EXCLUDED.image,
			pending_children = COALESCE(
				EXCLUDED.pending_children, taxa.pending_children
			),
			updated_at = NOW()
		RETURNING id
	`

	var id int64
	err = p.QueryRow(ctx, q,
		t.ExternalID, t.UUID, t.Name, t.CanonicalName, t.CommonName,
		t.Rank, t.ParentID, t.Ancestry, t.Extinct, t.ConservationStatus,
		t.Link, t.Excerpt, t.Image, pending,
	).Scan(&id)
	if err != nil {
		return 0, QueryError("upsert taxon", err)
	}
	return id, nil
}

func (s *store) TaxonByExternalID(
	ctx context.Context,
	extID int64,
) (*taxon.Taxon, error) {
	return s.taxonWhere(ctx, "external_id = $1", extID)
}

func (s *store) TaxonByID(
	ctx context.Context,
	id int64,
) (*taxon.Taxon, error) {
	return s.taxonWhere(ctx, "id = $1", id)
}

func (s *store) taxonWhere(
	ctx context.Context,
	cond string,
	arg any,
) (*taxon.Taxon, error) {
	p, err := s.pool()
	if err != nil {
		return nil, err
	}

	q := "SELECT " + taxonColumns + " FROM taxa WHERE " + cond

	row := p.QueryRow(ctx, q, arg)
	t, err := scanTaxon(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, QueryError("select taxon", err)
	}
	return t, nil
}

func (s *store) PendingParents(
	ctx context.Context,
	limit int,
) ([]*taxon.Taxon, error) {
	p, err := s.pool()
	if err != nil {
		return nil, err
	}

	q := `
		SELECT ` + taxonColumns + `
		FROM taxa
		WHERE pending_children @> '[{"processed": false}]'::jsonb
		ORDER BY id
		LIMIT $1
	`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, QueryError("select pending parents", err)
	}
	defer rows.Close()

	var res []*taxon.Taxon
	for rows.Next() {
		t, err := scanTaxon(rows)
		if err != nil {
			return nil, QueryError("scan pending parent", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError("iterate pending parents", err)
	}
	return res, nil
}

func (s *store) SetPendingChildren(
	ctx context.Context,
	taxonID int64,
	refs []taxon.PendingChildRef,
) error {
	p, err := s.pool()
	if err != nil {
		return err
	}

	data, err := json.Marshal(refs)
	if err != nil {
		return EncodePendingError(err)
	}

	q := `
		UPDATE taxa
		SET pending_children = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := p.Exec(ctx, q, taxonID, data); err != nil {
		return QueryError("update pending children", err)
	}
	return nil
}

const rowColumns = `taxon_id, scope, size, shape_primary,
shape_secondary, pattern, trait_primary, trait_secondary, diet,
color_mask, behavior_mask, habitat_mask, call_type_mask,
COALESCE(rank, ''), extinct, popularity, last_viewed, family_id,
region_id`

func (s *store) FacetRow(
	ctx context.Context,
	taxonID int64,
	scope string,
) (*facet.Row, error) {
	p, err := s.pool()
	if err != nil {
		return nil, err
	}

	q := "SELECT " + rowColumns +
		" FROM facet_rows WHERE taxon_id = $1 AND scope = $2"

	row := p.QueryRow(ctx, q, taxonID, scope)
	res, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, QueryError("select facet row", err)
	}
	return res, nil
}

func (s *store) UpsertFacetRow(
	ctx context.Context,
	row *facet.Row,
) error {
	p, err := s.pool()
	if err != nil {
		return err
	}

	// Facet codes replace wholesale. Rank, family_id and region_id are
	// guarded again here: an empty/null incoming value keeps the stored
	// one even if two builders race. Popularity and last_viewed belong
	// to the view counters and are never written by this statement.
	q := `
		INSERT INTO facet_rows (
			taxon_id, scope, size, shape_primary, shape_secondary,
			pattern, trait_primary, trait_secondary, diet,
			color_mask, behavior_mask, habitat_mask, call_type_mask,
			rank, extinct, family_id, region_id
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			NULLIF($14, ''), $15, $16, $17
		)
		ON CONFLICT (taxon_id, scope) DO UPDATE SET
			size = EXCLUDED.size,
			shape_primary = EXCLUDED.shape_primary,
			shape_secondary = EXCLUDED.shape_secondary,
			pattern = EXCLUDED.pattern,
			trait_primary = EXCLUDED.trait_primary,
			trait_secondary = EXCLUDED.trait_secondary,
			diet = EXCLUDED.diet,
			color_mask = EXCLUDED.color_mask,
			behavior_mask = EXCLUDED.behavior_mask,
			habitat_mask = EXCLUDED.habitat_mask,
			call_type_mask = EXCLUDED.call_type_mask,
			rank = COALESCE(EXCLUDED.rank, facet_rows.rank),
			extinct = EXCLUDED.extinct,
			family_id = COALESCE(EXCLUDED.family_id, facet_rows.family_id),
			region_id = COALESCE(EXCLUDED.region_id, facet_rows.region_id)
	`

	_, err = p.Exec(ctx, q,
		row.TaxonID, row.Scope,
		row.Size, row.ShapePrimary, row.ShapeSecondary, row.Pattern,
		row.TraitPrimary, row.TraitSecondary, row.Diet,
		row.ColorMask, row.BehaviorMask, row.HabitatMask,
		row.CallTypeMask,
		row.Rank, row.Extinct, row.FamilyID, row.RegionID,
	)
	if err != nil {
		return QueryError("upsert facet row", err)
	}
	return nil
}

func (s *store) RecordView(
	ctx context.Context,
	taxonID int64,
	at time.Time,
) error {
	p, err := s.pool()
	if err != nil {
		return err
	}

	q := `
		UPDATE facet_rows
		SET popularity = popularity + 1,
			last_viewed = GREATEST(COALESCE(last_viewed, $2), $2)
		WHERE taxon_id = $1
	`
	cmd, err := p.Exec(ctx, q, taxonID, at.UTC())
	if err != nil {
		return QueryError("record view", err)
	}

	// First touch of a taxon without a row yet: seed a global-scope row
	// so the view is not lost. Concurrent first views land on the
	// conflict branch.
	if cmd.RowsAffected() == 0 {
		q = `
			INSERT INTO facet_rows (taxon_id, scope, popularity, last_viewed)
			VALUES ($1, '', 1, $2)
			ON CONFLICT (taxon_id, scope) DO UPDATE SET
				popularity = facet_rows.popularity + 1,
				last_viewed = GREATEST(
					COALESCE(facet_rows.last_viewed, $2), $2)
		`
		if _, err := p.Exec(ctx, q, taxonID, at.UTC()); err != nil {
			return QueryError("record first view", err)
		}
	}

	q = `
		INSERT INTO view_buckets (taxon_id, day, view_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (taxon_id, day) DO UPDATE SET
			view_count = view_buckets.view_count + 1
	`
	day := at.UTC().Truncate(24 * time.Hour)
	if _, err := p.Exec(ctx, q, taxonID, day); err != nil {
		return QueryError("record view bucket", err)
	}
	return nil
}

func (s *store) RollupPopularity(
	ctx context.Context,
	now time.Time,
	windowDays int,
) (int, error) {
	p, err := s.pool()
	if err != nil {
		return 0, err
	}

	cutoff := now.UTC().AddDate(0, 0, -windowDays).
		Truncate(24 * time.Hour)

	// Rows without recent buckets decay to zero; untouched rows do not
	// count as updated.
	q := `
		UPDATE facet_rows AS f
		SET popularity = s.total
		FROM (
			SELECT f2.taxon_id, f2.scope,
				COALESCE(SUM(b.view_count), 0) AS total
			FROM facet_rows f2
			LEFT JOIN view_buckets b
				ON b.taxon_id = f2.taxon_id AND b.day >= $1
			GROUP BY f2.taxon_id, f2.scope
		) s
		WHERE s.taxon_id = f.taxon_id
			AND s.scope = f.scope
			AND f.popularity <> s.total
	`

	cmd, err := p.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, RollupQueryError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (s *store) FacetLayouts(
	ctx context.Context,
) (map[string]map[facet.Key][]string, error) {
	p, err := s.pool()
	if err != nil {
		return nil, err
	}

	rows, err := p.Query(ctx,
		"SELECT scope, facet_key, slugs FROM facet_layouts")
	if err != nil {
		return nil, QueryError("select facet layouts", err)
	}
	defer rows.Close()

	res := make(map[string]map[facet.Key][]string)
	for rows.Next() {
		var scope, key, slugs string
		if err := rows.Scan(&scope, &key, &slugs); err != nil {
			return nil, QueryError("scan facet layout", err)
		}
		byKey, ok := res[scope]
		if !ok {
			byKey = make(map[facet.Key][]string)
			res[scope] = byKey
		}
		byKey[facet.Key(key)] = strings.Split(slugs, "\n")
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError("iterate facet layouts", err)
	}
	return res, nil
}

func (s *store) SaveFacetLayout(
	ctx context.Context,
	scope string,
	key facet.Key,
	slugs []string,
) error {
	p, err := s.pool()
	if err != nil {
		return err
	}

	q := `
		INSERT INTO facet_layouts (scope, facet_key, slugs, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, facet_key) DO UPDATE SET
			slugs = EXCLUDED.slugs,
			updated_at = NOW()
	`
	joined := strings.Join(slugs, "\n")
	if _, err := p.Exec(ctx, q, scope, string(key), joined); err != nil {
		return QueryError("save facet layout", err)
	}
	return nil
}

// encodePending marshals the queue, mapping an empty queue to NULL so
// upserts can keep the stored queue via COALESCE.
func encodePending(refs []taxon.PendingChildRef) ([]byte, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return nil, EncodePendingError(err)
	}
	return data, nil
}

func scanTaxon(row pgx.Row) (*taxon.Taxon, error) {
	var t taxon.Taxon
	var pending []byte
	err := row.Scan(
		&t.ID, &t.ExternalID, &t.UUID, &t.Name, &t.CanonicalName,
		&t.CommonName, &t.Rank, &t.ParentID, &t.Ancestry, &t.Extinct,
		&t.ConservationStatus, &t.Link, &t.Excerpt, &t.Image,
		&pending, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		err = json.Unmarshal(pending, &t.PendingChildren)
		if err != nil {
			return nil, DecodePendingError(t.ID, err)
		}
	}
	return &t, nil
}

func scanRow(row pgx.Row) (*facet.Row, error) {
	var r facet.Row
	var lastViewed *time.Time
	err := row.Scan(
		&r.TaxonID, &r.Scope,
		&r.Size, &r.ShapePrimary, &r.ShapeSecondary, &r.Pattern,
		&r.TraitPrimary, &r.TraitSecondary, &r.Diet,
		&r.ColorMask, &r.BehaviorMask, &r.HabitatMask, &r.CallTypeMask,
		&r.Rank, &r.Extinct, &r.Popularity, &lastViewed,
		&r.FamilyID, &r.RegionID,
	)
	if err != nil {
		return nil, err
	}
	if lastViewed != nil {
		r.LastViewed = *lastViewed
	}
	return &r, nil
}
