package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cian-feed/models"
	"cian-feed/utils"
)

// SupabaseSource fetches listing and agent rows over the Supabase REST
// API (PostgREST).
type SupabaseSource struct {
	baseURL string
	key     string
	client  *http.Client
	retry   utils.RetryConfig
	logger  zerolog.Logger
}

// NewSupabaseSource validates credentials and returns a ready source.
func NewSupabaseSource(baseURL, serviceKey string, retry utils.RetryConfig, logger zerolog.Logger) (*SupabaseSource, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase: url and service key must be provided")
	}
	return &SupabaseSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry,
		logger:  logger,
	}, nil
}

// FetchListings returns all rows of the objects table in store order.
func (s *SupabaseSource) FetchListings(ctx context.Context) ([]*models.ListingRecord, error) {
	var listings []*models.ListingRecord
	err := s.retry.Do(ctx, "supabase fetch objects", func() error {
		body, _, err := s.get(ctx, "/rest/v1/objects", url.Values{"select": {"*"}}, nil)
		if err != nil {
			return err
		}
		listings = nil
		if err := json.Unmarshal(body, &listings); err != nil {
			return fmt.Errorf("supabase: decode objects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("count", len(listings)).Msg("fetched listing rows")
	return listings, nil
}

// FetchAgents returns agent rows for the given id set, keyed by id.
func (s *SupabaseSource) FetchAgents(ctx context.Context, ids []string) (map[string]*models.AgentRecord, error) {
	agents := make(map[string]*models.AgentRecord)
	if len(ids) == 0 {
		return agents, nil
	}

	params := url.Values{
		"select": {"*"},
		"id":     {"in.(" + strings.Join(ids, ",") + ")"},
	}
	err := s.retry.Do(ctx, "supabase fetch agents", func() error {
		body, _, err := s.get(ctx, "/rest/v1/agents", params, nil)
		if err != nil {
			return err
		}
		var rows []*models.AgentRecord
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("supabase: decode agents: %w", err)
		}
		for k := range agents {
			delete(agents, k)
		}
		for _, a := range rows {
			if id := a.ID.String(); id != "" {
				agents[id] = a
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// CountListings asks PostgREST for an exact count without pulling rows.
func (s *SupabaseSource) CountListings(ctx context.Context) (int, error) {
	var count int
	err := s.retry.Do(ctx, "supabase count objects", func() error {
		_, headers, err := s.get(ctx, "/rest/v1/objects",
			url.Values{"select": {"id"}},
			map[string]string{"Prefer": "count=exact"},
		)
		if err != nil {
			return err
		}
		count = parseContentRangeTotal(headers.Get("Content-Range"))
		return nil
	})
	return count, err
}

// Close satisfies ListingSource; the REST source holds no connection.
func (s *SupabaseSource) Close() error { return nil }

func (s *SupabaseSource) get(ctx context.Context, path string, params url.Values, extra map[string]string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("supabase: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("supabase: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("supabase: %s: unexpected status %d", path, resp.StatusCode)
	}
	return body, resp.Header, nil
}

// parseContentRangeTotal extracts the total from a "0-24/3573" style
// Content-Range header; malformed input degrades to 0.
func parseContentRangeTotal(header string) int {
	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return total
}
