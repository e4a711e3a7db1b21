package main

import (
	"fmt"
	"os"

	"github.com/gnames/gnfacet/internal/ioconfig"
	"github.com/gnames/gnfacet/internal/iofs"
	"github.com/gnames/gnfacet/internal/iologger"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/gnfacet"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	// persistent flag values
	flagScope    string
	flagLogLevel string
	flagJobs     int
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gnfacet",
		Short: "GNfacet manages a faceted taxon catalog",
		Long: `GNfacet builds and serves a faceted species catalog.

The tool covers the full lifecycle:
  - create:  create the PostgreSQL schema
  - migrate: apply schema migrations
  - ingest:  pull taxa from the external taxonomy source
  - serve:   run the HTTP search API
  - rollup:  recompute windowed popularity scores
  - facets:  print the resolved facet vocabularies

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNFACET_*)
  3. Config file (~/.config/gnfacet/config.yaml)
  4. Built-in defaults

Facet vocabularies live in ~/.config/gnfacet/facets.yaml. Slug lists
are append-only once rows have been encoded against them; gnfacet
verifies this on every start against the layouts stored in the
database.`,
		Version:           gnfacet.Version,
		PersistentPreRunE: bootstrap,
	}

	rootCmd.PersistentFlags().StringVar(&flagScope, "scope", "",
		"facet vocabulary scope (default: global)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&flagJobs, "jobs", 0,
		"number of concurrent workers")

	rootCmd.Flags().BoolP("version", "V", false, "version for gnfacet")

	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getIngestCmd())
	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getRollupCmd())
	rootCmd.AddCommand(getFacetsCmd())

	return rootCmd
}

// bootstrap prepares home directories, seeds default config files,
// loads configuration and initializes logging.
func bootstrap(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	if err := iofs.EnsureDirs(homeDir); err != nil {
		return err
	}
	if err := iofs.EnsureConfigFile(homeDir); err != nil {
		return err
	}
	if err := iofs.EnsureFacetsFile(homeDir); err != nil {
		return err
	}

	cfg, err = ioconfig.Load(homeDir)
	if err != nil {
		return err
	}
	cfg.HomeDir = homeDir

	var opts []config.Option
	if cmd.Flags().Changed("scope") {
		opts = append(opts, config.OptScope(flagScope))
	}
	if flagLogLevel != "" {
		opts = append(opts, config.OptLogLevel(flagLogLevel))
	}
	if flagJobs > 0 {
		opts = append(opts, config.OptJobsNumber(flagJobs))
	}
	cfg.Update(opts)

	return iologger.Init(config.LogDir(homeDir), cfg.Log, false)
}

// getConfig returns the loaded configuration for subcommands.
func getConfig() *config.Config {
	return cfg
}
