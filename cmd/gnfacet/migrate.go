package main

import (
	"context"
	"fmt"

	"github.com/gnames/gnfacet/internal/ioschema"
	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies database migrations",
		Long: "Applies all pending database migrations to bring the " +
			"schema to the latest version.",
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	op, err := connectOperator(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	fmt.Println("Applying database migrations...")
	sm := ioschema.NewManager(op)
	if err := sm.Migrate(ctx, cfg); err != nil {
		return err
	}

	// layouts may gain appended slugs during a migration rollout
	if _, _, err := openVerifiedStore(ctx, op); err != nil {
		return err
	}

	fmt.Println("\nDatabase migration complete.")
	return nil
}
