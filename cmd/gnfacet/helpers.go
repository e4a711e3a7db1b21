package main

import (
	"context"
	"fmt"

	"github.com/gnames/gnfacet/internal/iodb"
	"github.com/gnames/gnfacet/internal/iofacets"
	"github.com/gnames/gnfacet/internal/iostore"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/db"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
)

// connectOperator opens the PostgreSQL connection pool.
func connectOperator(ctx context.Context) (db.Operator, error) {
	cfg := getConfig()
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	fmt.Printf("Connected to database: %s@%s:%d/%s\n",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// loadRegistry assembles the facet registry from facets.yaml.
func loadRegistry() (*facet.Registry, error) {
	cfg := getConfig()
	file, err := iofacets.Load(config.FacetsFilePath(cfg.HomeDir))
	if err != nil {
		return nil, err
	}
	return iofacets.BuildRegistry(file.ScopeNames(), file)
}

// openVerifiedStore builds the registry, opens the PostgreSQL store
// and verifies the registry against the persisted vocabulary layouts.
// Every command that encodes or decodes facet rows goes through this.
func openVerifiedStore(
	ctx context.Context,
	op db.Operator,
) (gnfacet.Store, *facet.Registry, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	store := iostore.New(op)
	if err := iofacets.VerifyAndSaveLayouts(ctx, store, reg); err != nil {
		return nil, nil, err
	}
	return store, reg, nil
}
