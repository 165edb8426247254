package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"footdata/sync/internal/models"

	"github.com/rs/zerolog/log"
)

const competitionsCacheKey = "footdata:competitions"

// Cache is an optional byte cache for provider payloads. Implemented by the
// redis cache; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client is the football data API client
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration

	cache           Cache
	competitionsTTL time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithCache enables caching of the static competition list payload.
func WithCache(cache Cache, competitionsTTL time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.competitionsTTL = competitionsTTL
	}
}

// NewClient creates a new football data API client
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	// Create rate limiter (max 10 concurrent requests)
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the provider API with retry logic and rate limiting
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	// Rate limiting: acquire semaphore for the whole call, retries included
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create request: %v", ErrPermanent, err)
		}

		// Add headers
		req.Header.Set("X-Auth-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "footdata-sync/1.0")

		// Add query parameters
		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Str("method", req.Method).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: API request failed: %v", ErrTransient, err)
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response body: %v", ErrTransient, err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		// Handle different status codes
		switch resp.StatusCode {
		case http.StatusOK:
			// Success
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retryable errors
			lastErr = fmt.Errorf("%w: API returned retryable status %d: %s", ErrTransient, resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			return nil, fmt.Errorf("%w: API authentication failed (status %d): %s", ErrPermanent, resp.StatusCode, string(body))

		default:
			// Other errors - don't retry
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: API returned status %d: %s", ErrTransient, resp.StatusCode, string(body))
			}
			return nil, fmt.Errorf("%w: API returned status %d: %s", ErrPermanent, resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// CompetitionsResponse is the provider competition list payload
type CompetitionsResponse struct {
	Count        int                       `json:"count"`
	Competitions []models.CompetitionInput `json:"competitions"`
}

// TeamsResponse is the provider team roster payload for one competition
type TeamsResponse struct {
	Count  int                 `json:"count"`
	Season *models.SeasonInput `json:"season,omitempty"`
	Teams  []models.TeamInput  `json:"teams"`
}

// MatchesResponse is the provider match list payload for one competition
type MatchesResponse struct {
	Matches []models.MatchInput `json:"matches"`
}

// StandingsResponse is the provider standings payload for one competition
type StandingsResponse struct {
	Season    *models.SeasonInput `json:"season,omitempty"`
	Standings []struct {
		Stage string                 `json:"stage"`
		Type  string                 `json:"type"`
		Table []models.StandingInput `json:"table"`
	} `json:"standings"`
}

// MatchOptions are optional filters for the matches endpoint
type MatchOptions struct {
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
	Status   string
	Matchday int
	Season   int
}

// FetchCompetitions fetches the full competition list.
// The payload is static data and is served from cache when one is configured.
func (c *Client) FetchCompetitions(ctx context.Context) ([]models.CompetitionInput, error) {
	body, err := c.cachedGet(ctx, "competitions", competitionsCacheKey, c.competitionsTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch competitions: %w", err)
	}

	var resp CompetitionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal competitions: %v", ErrPermanent, err)
	}

	return resp.Competitions, nil
}

// FetchTeams fetches the team roster for one competition
func (c *Client) FetchTeams(ctx context.Context, competitionID int) ([]models.TeamInput, error) {
	path := fmt.Sprintf("competitions/%d/teams", competitionID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams for competition %d: %w", competitionID, err)
	}

	var resp TeamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal teams: %v", ErrPermanent, err)
	}

	return resp.Teams, nil
}

// FetchMatches fetches the matches of one competition's current season
func (c *Client) FetchMatches(ctx context.Context, competitionID int, opts *MatchOptions) ([]models.MatchInput, error) {
	path := fmt.Sprintf("competitions/%d/matches", competitionID)

	params := make(map[string]string)
	if opts != nil {
		if opts.DateFrom != "" {
			params["dateFrom"] = opts.DateFrom
		}
		if opts.DateTo != "" {
			params["dateTo"] = opts.DateTo
		}
		if opts.Status != "" {
			params["status"] = opts.Status
		}
		if opts.Matchday > 0 {
			params["matchday"] = fmt.Sprintf("%d", opts.Matchday)
		}
		if opts.Season > 0 {
			params["season"] = fmt.Sprintf("%d", opts.Season)
		}
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches for competition %d: %w", competitionID, err)
	}

	var resp MatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal matches: %v", ErrPermanent, err)
	}

	return resp.Matches, nil
}

// FetchStandings fetches the current league table for one competition.
// Only the TOTAL table is returned; home/away splits are discarded.
func (c *Client) FetchStandings(ctx context.Context, competitionID int) (*models.StandingsSnapshot, error) {
	path := fmt.Sprintf("competitions/%d/standings", competitionID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings for competition %d: %w", competitionID, err)
	}

	var resp StandingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal standings: %v", ErrPermanent, err)
	}

	snapshot := &models.StandingsSnapshot{
		CompetitionID: competitionID,
		Season:        resp.Season,
	}
	for _, s := range resp.Standings {
		if s.Type == "TOTAL" {
			snapshot.Table = s.Table
			break
		}
	}

	return snapshot, nil
}

// cachedGet serves a payload from cache when possible, falling back to the
// API and populating the cache on the way out. Cache failures are logged and
// ignored; the cache is an optimization, not a dependency.
func (c *Client) cachedGet(ctx context.Context, path, cacheKey string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		body, found, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Cache read failed, falling back to API")
		} else if found {
			log.Debug().Str("key", cacheKey).Int("size", len(body)).Msg("Cache hit")
			return body, nil
		}
	}

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && ttl > 0 {
		if err := c.cache.Set(ctx, cacheKey, body, ttl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Cache write failed")
		}
	}

	return body, nil
}
