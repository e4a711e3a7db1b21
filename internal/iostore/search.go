package iostore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/query"
)

// enumColumns maps facet keys to their facet_rows columns. Only known
// keys are rendered, so predicate keys never reach the SQL text as raw
// strings.
var enumColumns = map[facet.Key]string{
	facet.Size:           "f.size",
	facet.ShapePrimary:   "f.shape_primary",
	facet.ShapeSecondary: "f.shape_secondary",
	facet.Pattern:        "f.pattern",
	facet.TraitPrimary:   "f.trait_primary",
	facet.TraitSecondary: "f.trait_secondary",
	facet.Diet:           "f.diet",
}

var maskColumns = map[facet.Key]string{
	facet.Colors:    "f.color_mask",
	facet.Behaviors: "f.behavior_mask",
	facet.Habitats:  "f.habitat_mask",
	facet.CallTypes: "f.call_type_mask",
}

// sortTitle orders by the parsed canonical name when the scientific
// name parsed, then vernacular, then the raw name; collation is "C".
const sortTitle = `LOWER(COALESCE(
	NULLIF(t.canonical_name, ''), NULLIF(t.common_name, ''), t.name
)) ASC, t.id ASC`

func (s *store) Search(
	ctx context.Context,
	plan *query.Plan,
) (*query.Result, error) {
	p, err := s.pool()
	if err != nil {
		return nil, err
	}

	where, args := renderWhere(plan)

	countQ := "SELECT COUNT(*) FROM facet_rows f " +
		"JOIN taxa t ON t.id = f.taxon_id WHERE " + where

	var total int
	if err := p.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, SearchError(err)
	}

	res := &query.Result{
		Page:    plan.Page,
		PerPage: plan.PerPage,
		Total:   total,
	}
	if total == 0 || plan.Offset() >= total {
		return res, nil
	}

	q := fmt.Sprintf(`
		SELECT
			t.id, t.external_id, t.uuid, t.name, t.canonical_name,
			t.common_name, t.rank, t.parent_id, t.ancestry, t.extinct,
			t.conservation_status, t.link, t.excerpt, t.image,
			t.pending_children, t.created_at, t.updated_at,
			f.taxon_id, f.scope, f.size, f.shape_primary,
			f.shape_secondary, f.pattern, f.trait_primary,
			f.trait_secondary, f.diet, f.color_mask, f.behavior_mask,
			f.habitat_mask, f.call_type_mask, COALESCE(f.rank, ''),
			f.extinct, f.popularity, f.last_viewed, f.family_id,
			f.region_id
		FROM facet_rows f
		JOIN taxa t ON t.id = f.taxon_id
		WHERE %s
		ORDER BY %s
		LIMIT %d OFFSET %d`,
		where, s.orderBy(ctx, plan.Sort), plan.PerPage, plan.Offset(),
	)

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, SearchError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var item query.Item
		var pending []byte
		var lastViewed *time.Time
		err := rows.Scan(
			&item.Taxon.ID, &item.Taxon.ExternalID, &item.Taxon.UUID,
			&item.Taxon.Name, &item.Taxon.CanonicalName,
			&item.Taxon.CommonName, &item.Taxon.Rank,
			&item.Taxon.ParentID, &item.Taxon.Ancestry,
			&item.Taxon.Extinct, &item.Taxon.ConservationStatus,
			&item.Taxon.Link, &item.Taxon.Excerpt, &item.Taxon.Image,
			&pending, &item.Taxon.CreatedAt, &item.Taxon.UpdatedAt,
			&item.Row.TaxonID, &item.Row.Scope, &item.Row.Size,
			&item.Row.ShapePrimary, &item.Row.ShapeSecondary,
			&item.Row.Pattern, &item.Row.TraitPrimary,
			&item.Row.TraitSecondary, &item.Row.Diet,
			&item.Row.ColorMask, &item.Row.BehaviorMask,
			&item.Row.HabitatMask, &item.Row.CallTypeMask,
			&item.Row.Rank, &item.Row.Extinct, &item.Row.Popularity,
			&lastViewed, &item.Row.FamilyID, &item.Row.RegionID,
		)
		if err != nil {
			return nil, SearchError(err)
		}
		if lastViewed != nil {
			item.Row.LastViewed = *lastViewed
		}
		if len(pending) > 0 {
			err = json.Unmarshal(pending, &item.Taxon.PendingChildren)
			if err != nil {
				return nil, DecodePendingError(item.Taxon.ID, err)
			}
		}
		res.Items = append(res.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, SearchError(err)
	}
	return res, nil
}

// renderWhere builds the WHERE clause of a plan. It must agree with
// Plan.MatchCodes and Plan.MatchTaxon in pkg/query.
func renderWhere(plan *query.Plan) (string, []any) {
	var conds []string
	var args []any

	next := func() string {
		return fmt.Sprintf("$%d", len(args)+1)
	}

	args = append(args, plan.Scope)
	conds = append(conds, "f.scope = $1")

	for _, ep := range plan.Enums {
		col, ok := enumColumns[ep.Key]
		if !ok {
			continue
		}
		ph := next()
		args = append(args, ep.Codes)
		conds = append(conds, fmt.Sprintf("%s = ANY(%s)", col, ph))
	}

	for _, mp := range plan.Masks {
		col, ok := maskColumns[mp.Key]
		if !ok {
			continue
		}
		ph := next()
		args = append(args, mp.Mask)
		if mp.All {
			conds = append(conds,
				fmt.Sprintf("(%s & %s) = %s", col, ph, ph))
		} else {
			conds = append(conds,
				fmt.Sprintf("(%s & %s) <> 0", col, ph))
		}
	}

	if !plan.IncludeExtinct {
		conds = append(conds, "NOT f.extinct")
	}

	if plan.Rank != "" {
		ph := next()
		args = append(args, plan.Rank)
		conds = append(conds, fmt.Sprintf("COALESCE(f.rank, '') = %s", ph))
	}

	if plan.Search != "" {
		ph := next()
		args = append(args, "%"+escapeLike(plan.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			`LOWER(CONCAT_WS(E'\n',
				COALESCE(NULLIF(t.common_name, ''), t.name),
				t.name, t.excerpt)) LIKE %s`, ph))
	}

	return strings.Join(conds, " AND "), args
}

// orderBy renders the plan's sort mode. The popular sort needs the
// popularity columns; on schemas migrated without them it degrades to
// title order instead of failing the query.
func (s *store) orderBy(ctx context.Context, mode query.SortMode) string {
	switch mode {
	case query.SortTitle:
		return sortTitle
	case query.SortNewest:
		return "t.created_at DESC, t.id DESC"
	default:
		if !s.popularSortable(ctx) {
			return sortTitle
		}
		return "f.popularity DESC, f.last_viewed DESC NULLS LAST, " +
			sortTitle
	}
}

// popularSortable reports whether facet_rows carries the popularity
// column. A failed probe degrades only the current query and is
// retried on the next one.
func (s *store) popularSortable(ctx context.Context) bool {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if s.popProbe == probeUnknown {
		ok, err := s.op.ColumnExists(ctx, "facet_rows", "popularity")
		if err != nil {
			return false
		}
		if ok {
			s.popProbe = probePresent
		} else {
			s.popProbe = probeAbsent
		}
	}
	return s.popProbe == probePresent
}

// escapeLike escapes LIKE metacharacters in user search text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
