// Package iorollup implements the popularity rollup: per-taxon daily
// view buckets are summed over a trailing window and the result
// replaces each row's lifetime counter, so old spikes decay.
package iorollup

import (
	"context"
	"log/slog"
	"time"

	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/gnames/gnfmt"
)

// WindowDays is the trailing window of the popularity score.
const WindowDays = 30

type rollup struct {
	store gnfacet.Store
}

// New creates the rollup over a store.
func New(store gnfacet.Store) gnfacet.Rollup {
	return &rollup{store: store}
}

// Run performs one rollup pass and returns the number of rows whose
// score changed.
func (r *rollup) Run(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.store.RollupPopularity(ctx, start, WindowDays)
	if err != nil {
		return 0, err
	}

	slog.Info("Recomputed popularity scores",
		"rows", n,
		"windowDays", WindowDays,
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return n, nil
}
