package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gnfacet/internal/ioschema"
	"github.com/spf13/cobra"
)

var forceCreate bool

func getCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create database schema",
		Long: `Create the GNfacet database schema from scratch.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks for existing tables and prompts for confirmation if found
  3. Creates all tables using GORM AutoMigrate
  4. Persists the facet vocabulary layouts for append-only verification

Use --force to skip confirmation and drop existing tables automatically.

Examples:
  gnfacet create
  gnfacet create --force`,
		RunE: runCreate,
	}

	cmd.Flags().BoolVar(&forceCreate, "force", false,
		"drop existing tables before creating schema (destructive)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	op, err := connectOperator(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}

	if hasTables {
		if !forceCreate {
			fmt.Println("\nWarning: database contains existing tables.")
			fmt.Println("Creating schema will drop ALL existing tables and data.")
			fmt.Print("\nDo you want to continue? (yes/no): ")

			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read user input: %w", err)
			}

			response = strings.TrimSpace(strings.ToLower(response))
			if response != "yes" && response != "y" {
				fmt.Println("Aborted. No changes made to the database.")
				return nil
			}
		}

		fmt.Println("Dropping all existing tables...")
		if err := op.DropAllTables(ctx); err != nil {
			return err
		}
	}

	fmt.Println("Creating schema using GORM AutoMigrate...")
	sm := ioschema.NewManager(op)
	if err := sm.Create(ctx, cfg); err != nil {
		return err
	}

	// stamp the current vocabulary layouts into the fresh schema
	if _, _, err := openVerifiedStore(ctx, op); err != nil {
		return err
	}

	fmt.Println("\nDatabase schema creation complete.")
	fmt.Println("\nNext steps:")
	fmt.Println("  - Run 'gnfacet ingest --root <id>' to initialize a subtree")
	fmt.Println("  - Run 'gnfacet serve' to start the search API")

	return nil
}
