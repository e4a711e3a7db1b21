package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gnames/gnfacet/internal/iofacets"
	"github.com/gnames/gnfacet/internal/iomem"
	"github.com/gnames/gnfacet/internal/ioserver"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/spf13/cobra"
)

var (
	flagPort int
	flagMem  bool
)

func getServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Long: `Run the HTTP search API.

The server exposes the faceted search endpoints:

  GET /taxa/v1/ping
  GET /taxa/v1/search
  GET /taxa/v1/taxa/{id}

With --mem the server runs against an empty in-memory store instead of
PostgreSQL. This is useful for trying the API surface without a
database; all data is lost on shutdown.

Examples:
  gnfacet serve
  gnfacet serve --port 9000
  gnfacet serve --mem`,
		RunE: runServe,
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, "port the API listens on")
	cmd.Flags().BoolVar(&flagMem, "mem", false,
		"use an in-memory store instead of PostgreSQL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := getConfig()
	if flagPort > 0 {
		cfg.Update([]config.Option{config.OptServerPort(flagPort)})
	}

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Starting search API on port %d...\n", cfg.Server.Port)
	return srv.Run(ctx)
}

func newServer(ctx context.Context, cfg *config.Config) (*ioserver.Server, error) {
	if flagMem {
		reg, err := loadRegistry()
		if err != nil {
			return nil, err
		}
		store := iomem.New()
		if err := iofacets.VerifyAndSaveLayouts(ctx, store, reg); err != nil {
			return nil, err
		}
		fmt.Println("Using in-memory store, data will not persist.")
		return ioserver.New(cfg, store, reg), nil
	}

	op, err := connectOperator(ctx)
	if err != nil {
		return nil, err
	}

	store, reg, err := openVerifiedStore(ctx, op)
	if err != nil {
		op.Close()
		return nil, err
	}
	return ioserver.New(cfg, store, reg), nil
}
