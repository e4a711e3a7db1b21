package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfacet/internal/iorollup"
	"github.com/spf13/cobra"
)

func getRollupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollup",
		Short: "Recompute windowed popularity scores",
		Long: `Recompute popularity scores from the view buckets.

Each facet row's popularity becomes the sum of its taxon's views over
the rolling window. Rows whose score already matches are left alone,
so repeated runs are cheap. Meant to run daily from cron.`,
		RunE: runRollup,
	}
}

func runRollup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	op, err := connectOperator(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	store, _, err := openVerifiedStore(ctx, op)
	if err != nil {
		return err
	}

	n, err := iorollup.New(store).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Popularity rollup complete, %s rows updated.\n",
		humanize.Comma(int64(n)))
	return nil
}
