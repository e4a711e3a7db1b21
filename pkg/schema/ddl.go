package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
func generateDDL(model interface{}, tableName string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Taxon DDL methods
func (t Taxon) TableDDL() string {
	return generateDDL(t, "taxa")
}

func (t Taxon) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_taxa_external_id ON taxa(external_id);",
		"CREATE INDEX idx_taxa_parent_id ON taxa(parent_id);",
		"CREATE INDEX idx_taxa_canonical_name ON taxa(canonical_name);",
	}
}

func (t Taxon) TableName() string {
	return "taxa"
}

// FacetRow DDL methods
func (fr FacetRow) TableDDL() string {
	return generateDDL(fr, "facet_rows")
}

func (fr FacetRow) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_facet_rows_taxon_scope ON facet_rows(taxon_id, scope);",
		"CREATE INDEX idx_facet_rows_popularity ON facet_rows(scope, popularity DESC);",
		"CREATE INDEX idx_facet_rows_rank ON facet_rows(scope, rank);",
	}
}

func (fr FacetRow) TableName() string {
	return "facet_rows"
}

// ViewBucket DDL methods
func (vb ViewBucket) TableDDL() string {
	return generateDDL(vb, "view_buckets")
}

func (vb ViewBucket) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_view_buckets_taxon_day ON view_buckets(taxon_id, day);",
		"CREATE INDEX idx_view_buckets_day ON view_buckets(day);",
	}
}

func (vb ViewBucket) TableName() string {
	return "view_buckets"
}

// FacetLayout DDL methods
func (fl FacetLayout) TableDDL() string {
	return generateDDL(fl, "facet_layouts")
}

func (fl FacetLayout) IndexDDL() []string {
	return []string{}
}

func (fl FacetLayout) TableName() string {
	return "facet_layouts"
}
