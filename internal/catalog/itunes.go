// Package catalog is a client for the iTunes Search API album search and
// artist lookup endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/albumlink/internal/ratelimit"
)

const (
	defaultBaseURL = "https://itunes.apple.com"

	// LimiterKey is the ratelimit.Map key shared by all catalog requests.
	LimiterKey = "itunes"
)

// Config controls catalog queries.
type Config struct {
	BaseURL     string
	Country     string
	SearchLimit int
	LookupLimit int
	Timeout     time.Duration
}

// DefaultConfig returns the query parameters used by the search popup.
func DefaultConfig() Config {
	return Config{
		BaseURL:     defaultBaseURL,
		Country:     "us",
		SearchLimit: 10,
		LookupLimit: 50,
		Timeout:     10 * time.Second,
	}
}

// StatusError indicates the catalog answered with a non-success status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iTunes API returned %d", e.StatusCode)
}

// UnavailableError indicates a transport or decoding failure.
type UnavailableError struct {
	Endpoint string
	Cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("iTunes %s unavailable: %v", e.Endpoint, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Client queries the iTunes Search API.
type Client struct {
	client  *http.Client
	limiter *ratelimit.Map
	logger  *slog.Logger
	cfg     Config
}

// New creates a client. Zero-valued config fields take their defaults.
func New(cfg Config, limiter *ratelimit.Map, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Country == "" {
		cfg.Country = def.Country
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.LookupLimit <= 0 {
		cfg.LookupLimit = def.LookupLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.With(slog.String("component", "catalog")),
		cfg:     cfg,
	}
}

// SearchAlbums runs a free-text album search. An empty result list is not
// an error.
func (c *Client) SearchAlbums(ctx context.Context, term string) ([]Result, error) {
	params := url.Values{
		"term":    {term},
		"entity":  {"album"},
		"limit":   {strconv.Itoa(c.cfg.SearchLimit)},
		"country": {c.cfg.Country},
	}

	results, err := c.get(ctx, "search", params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("album search completed",
		slog.String("term", term),
		slog.Int("results", len(results)))

	return results, nil
}

// LookupArtistAlbums returns the artist's profile record followed by up to
// LookupLimit of their collections.
func (c *Client) LookupArtistAlbums(ctx context.Context, artistID int64) ([]Result, error) {
	params := url.Values{
		"id":     {strconv.FormatInt(artistID, 10)},
		"entity": {"album"},
		"limit":  {strconv.Itoa(c.cfg.LookupLimit)},
	}

	results, err := c.get(ctx, "lookup", params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("artist lookup completed",
		slog.Int64("artist_id", artistID),
		slog.Int("results", len(results)))

	return results, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]Result, error) {
	if err := c.limiter.Wait(ctx, LimiterKey); err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req) //nolint:gosec // URL constructed from client config
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Cause: fmt.Errorf("reading response: %w", err)}
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Cause: fmt.Errorf("parsing response: %w", err)}
	}
	return out.Results, nil
}
