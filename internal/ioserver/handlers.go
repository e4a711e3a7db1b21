package ioserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/query"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("pong"))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)

	plan := query.Compile(s.reg, s.cfg.Scope, req, query.Limits{
		PerPageDefault: s.cfg.Server.PerPageDefault,
		PerPageMax:     s.cfg.Server.PerPageMax,
	})

	res, err := s.store.Search(r.Context(), &plan)
	if err != nil {
		slog.Error("Search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, s.searchResponse(res))
}

func (s *Server) handleTaxon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed taxon id")
		return
	}

	t, err := s.store.TaxonByID(r.Context(), id)
	if err != nil {
		slog.Error("Taxon lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "taxon not found")
		return
	}

	// a successful read is a view: counters feed the popular sort
	if err := s.store.RecordView(r.Context(), id, time.Now()); err != nil {
		slog.Warn("Cannot record view", "id", id, "error", err)
	}

	row, err := s.store.FacetRow(r.Context(), id, s.cfg.Scope)
	if err != nil {
		slog.Warn("Cannot load facet row", "id", id, "error", err)
	}

	writeJSON(w, s.taxonResponse(t, row))
}

// parseSearchRequest maps query parameters onto a normalized request.
// The legacy call_pattern parameter folds into pattern here, so the
// compiler never sees the alias.
func parseSearchRequest(r *http.Request) query.Request {
	q := r.URL.Query()

	req := query.Request{
		Sort:           q.Get("sort"),
		Search:         q.Get("search"),
		Rank:           q.Get("taxa_rank"),
		IncludeExtinct: q.Get("include_extinct") == "1",
		Single:         make(map[facet.Key][]string),
		Multi:          make(map[facet.Key][]string),
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	for _, key := range facet.EnumKeys() {
		raw := q.Get(string(key))
		if key == facet.Pattern && raw == "" {
			raw = q.Get("call_pattern")
		}
		if slugs := facet.ParseSlugList(raw); len(slugs) > 0 {
			req.Single[key] = slugs
		}
	}

	for _, key := range facet.MaskKeys() {
		if slugs := facet.ParseSlugList(q[string(key)]); len(slugs) > 0 {
			req.Multi[key] = slugs
		}
	}

	return req
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Cannot encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
