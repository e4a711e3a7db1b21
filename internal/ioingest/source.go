package ioingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/taxon"
	"golang.org/x/time/rate"
)

// retryDelay is the pause before the single retry of a failed lookup.
const retryDelay = 2 * time.Second

// Fetcher delivers source envelopes for external ids. The production
// implementation is the throttled HTTP client below; tests substitute
// an in-memory fake.
type Fetcher interface {
	Fetch(ctx context.Context, extID int64) (*taxon.SourceEnvelope, error)
}

type httpSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *ResponseCache
}

// NewSource creates the throttled HTTP fetcher for the external
// taxonomy source. The cache may be nil; responses are then always
// fetched fresh.
func NewSource(cfg *config.Config, cache *ResponseCache) Fetcher {
	rps := cfg.Ingest.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &httpSource{
		baseURL: cfg.Ingest.SourceURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cache:   cache,
	}
}

// Fetch returns the envelope for an external id, from the response
// cache when possible. A failed request is retried once after a short
// delay before the error surfaces.
func (s *httpSource) Fetch(
	ctx context.Context,
	extID int64,
) (*taxon.SourceEnvelope, error) {
	if s.cache != nil {
		if body, ok := s.cache.Get(extID); ok {
			env, err := decodeEnvelope(extID, body)
			if err == nil {
				return env, nil
			}
			slog.Warn("Discarding corrupt cached response",
				"externalID", extID, "error", err)
		}
	}

	body, err := s.get(ctx, extID)
	if err != nil {
		slog.Warn("Source fetch failed, retrying once",
			"externalID", extID, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		body, err = s.get(ctx, extID)
		if err != nil {
			return nil, err
		}
	}

	env, err := decodeEnvelope(extID, body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(extID, body); err != nil {
			slog.Warn("Cannot cache source response",
				"externalID", extID, "error", err)
		}
	}
	return env, nil
}

func (s *httpSource) get(ctx context.Context, extID int64) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%d", s.baseURL, extID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, SourceError(extID, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, SourceError(extID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, SourceError(extID,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, SourceError(extID, err)
	}
	return body, nil
}

func decodeEnvelope(extID int64, body []byte) (*taxon.SourceEnvelope, error) {
	var env taxon.SourceEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, DecodeError(extID, err)
	}
	return &env, nil
}
