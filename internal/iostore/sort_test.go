package iostore

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/query"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

type fakeOperator struct {
	colExists bool
	colErr    error
	probes    int
}

func (f *fakeOperator) Connect(context.Context, *config.DatabaseConfig) error {
	return nil
}
func (f *fakeOperator) Close() error { return nil }

func (f *fakeOperator) Pool() *pgxpool.Pool { return nil }

func (f *fakeOperator) Ping(context.Context) error { return nil }

func (f *fakeOperator) TableExists(
	ctx context.Context, table string,
) (bool, error) {
	return false, nil
}

func (f *fakeOperator) ColumnExists(
	ctx context.Context, table, column string,
) (bool, error) {
	f.probes++
	return f.colExists, f.colErr
}

func (f *fakeOperator) HasTables(ctx context.Context) (bool, error) {
	return false, nil
}
func (f *fakeOperator) DropAllTables(ctx context.Context) error { return nil }

func TestOrderByProbeRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	op := &fakeOperator{colExists: true, colErr: errors.New("canceled")}
	s := &store{op: op}

	// a failing probe degrades the current query only
	assert.Equal(t, sortTitle, s.orderBy(ctx, query.SortPopular))
	assert.Equal(t, 1, op.probes)

	// the next query probes again and finds the column
	op.colErr = nil
	got := s.orderBy(ctx, query.SortPopular)
	assert.Contains(t, got, "f.popularity DESC")
	assert.Equal(t, 2, op.probes)

	// a successful probe is cached
	s.orderBy(ctx, query.SortPopular)
	assert.Equal(t, 2, op.probes)
}

func TestOrderByProbeCachesAbsentColumn(t *testing.T) {
	ctx := context.Background()
	op := &fakeOperator{colExists: false}
	s := &store{op: op}

	assert.Equal(t, sortTitle, s.orderBy(ctx, query.SortPopular))
	assert.Equal(t, sortTitle, s.orderBy(ctx, query.SortPopular))
	assert.Equal(t, 1, op.probes)

	// explicit sorts never probe
	assert.Equal(t, sortTitle, s.orderBy(ctx, query.SortTitle))
	assert.Contains(t, s.orderBy(ctx, query.SortNewest), "t.created_at DESC")
	assert.Equal(t, 1, op.probes)
}
