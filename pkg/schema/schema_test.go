package schema_test

import (
	"strings"
	"testing"

	"github.com/gnames/gnfacet/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonTableDDL(t *testing.T) {
	tx := schema.Taxon{}
	ddl := tx.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE taxa")
	assert.Contains(t, ddl, "id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "external_id BIGINT NOT NULL UNIQUE")
	assert.Contains(t, ddl, "name VARCHAR(255) NOT NULL")
	assert.Contains(t, ddl, "extinct BOOLEAN NOT NULL DEFAULT FALSE")
	assert.Contains(t, ddl, "pending_children JSONB")
}

func TestTaxonIndexDDL(t *testing.T) {
	tx := schema.Taxon{}
	indexes := tx.IndexDDL()
	require.NotEmpty(t, indexes)

	all := strings.Join(indexes, "\n")
	assert.Contains(t, all, "UNIQUE INDEX idx_taxa_external_id")
	assert.Contains(t, all, "idx_taxa_parent_id")
	assert.Contains(t, all, "idx_taxa_canonical_name")
}

func TestFacetRowTableDDL(t *testing.T) {
	fr := schema.FacetRow{}
	ddl := fr.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE facet_rows")

	// enum codes are small, masks need the full 63 bits
	assert.Contains(t, ddl, "size SMALLINT NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "diet SMALLINT NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "color_mask BIGINT NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "call_type_mask BIGINT NOT NULL DEFAULT 0")

	// sticky fields are nullable so "absent" and "stored" differ
	assert.Contains(t, ddl, "rank VARCHAR(255)")
	assert.Contains(t, ddl, "last_viewed TIMESTAMP WITHOUT TIME ZONE")
	assert.Contains(t, ddl, "popularity BIGINT NOT NULL DEFAULT 0")
}

func TestFacetRowIndexDDL(t *testing.T) {
	fr := schema.FacetRow{}
	all := strings.Join(fr.IndexDDL(), "\n")

	assert.Contains(t, all, "UNIQUE INDEX idx_facet_rows_taxon_scope")
	assert.Contains(t, all, "popularity DESC")
}

func TestViewBucketTableDDL(t *testing.T) {
	vb := schema.ViewBucket{}
	ddl := vb.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE view_buckets")
	assert.Contains(t, ddl, "day DATE NOT NULL")
	assert.Contains(t, ddl, "view_count BIGINT NOT NULL DEFAULT 0")

	all := strings.Join(vb.IndexDDL(), "\n")
	assert.Contains(t, all, "UNIQUE INDEX idx_view_buckets_taxon_day")
}

func TestFacetLayoutTableDDL(t *testing.T) {
	fl := schema.FacetLayout{}
	ddl := fl.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE facet_layouts")
	assert.Contains(t, ddl, "facet_key VARCHAR(50) NOT NULL")
	assert.Contains(t, ddl, "slugs TEXT NOT NULL")
	assert.Empty(t, fl.IndexDDL())
}

func TestTableNames(t *testing.T) {
	tests := []struct {
		msg   string
		model schema.DDLGenerator
		name  string
	}{
		{"taxa", schema.Taxon{}, "taxa"},
		{"facet rows", schema.FacetRow{}, "facet_rows"},
		{"view buckets", schema.ViewBucket{}, "view_buckets"},
		{"facet layouts", schema.FacetLayout{}, "facet_layouts"},
	}

	for _, v := range tests {
		assert.Equal(t, v.name, v.model.TableName(), v.msg)
	}
}
