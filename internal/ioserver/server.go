// Package ioserver serves the faceted search API over HTTP. Routing
// uses the stdlib mux; responses are small JSON envelopes shaped for
// result-card rendering.
package ioserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
)

// Server is the HTTP search API.
type Server struct {
	cfg   *config.Config
	store gnfacet.Store
	reg   *facet.Registry
}

// New creates the API server over a store and a resolved registry.
func New(
	cfg *config.Config,
	store gnfacet.Store,
	reg *facet.Registry,
) *Server {
	return &Server{cfg: cfg, store: store, reg: reg}
}

// Handler returns the route table; split out so tests can drive the
// handlers without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /taxa/v1/ping", s.handlePing)
	mux.HandleFunc("GET /taxa/v1/search", s.handleSearch)
	mux.HandleFunc("GET /taxa/v1/taxa/{id}", s.handleTaxon)
	return mux
}

// Run serves the API until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Search API listening", "port", s.cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return StartError(s.cfg.Server.Port, err)
	}
}
