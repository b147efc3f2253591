package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sydlexius/albumlink/internal/ratelimit"
)

// Fetch defaults, applied when FetchConfig leaves a field zero.
const (
	DefaultUserAgent    = "Mozilla/5.0 (compatible; albumlink/1.0)"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

// FetchConfig controls how pages are retrieved. Hosts resolving to internal
// addresses are refused unless AllowPrivateNetworks is set.
type FetchConfig struct {
	UserAgent            string
	Timeout              time.Duration
	MaxBodyBytes         int64
	AllowPrivateNetworks bool
}

// Fetcher downloads and parses web pages.
type Fetcher struct {
	client   *http.Client
	limiter  *ratelimit.Map
	logger   *slog.Logger
	agent    string
	maxBytes int64
}

// ErrInvalidURL is the cause of a FetchError for URLs that are not absolute
// http or https URLs.
var ErrInvalidURL = errors.New("invalid page URL")

// FetchError reports a page that could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// NewFetcher creates a Fetcher. Requests are rate limited per hostname.
func NewFetcher(cfg FetchConfig, limiter *ratelimit.Map, logger *slog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = DefaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	client := &http.Client{Timeout: timeout}
	if !cfg.AllowPrivateNetworks {
		client.Transport = publicOnlyTransport(net.DefaultResolver)
	}
	return &Fetcher{
		client:   client,
		limiter:  limiter,
		logger:   logger.With(slog.String("component", "page-fetcher")),
		agent:    agent,
		maxBytes: maxBytes,
	}
}

// Fetch retrieves pageURL and parses it. The returned document's host is
// taken from the final URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &FetchError{URL: pageURL, Cause: ErrInvalidURL}
	}

	if err := f.limiter.Wait(ctx, strings.ToLower(u.Hostname())); err != nil {
		return nil, &FetchError{URL: pageURL, Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	req.Header.Set("User-Agent", f.agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req) //nolint:gosec // scheme checked above, internal hosts refused by the transport
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	doc, err := Parse(io.LimitReader(resp.Body, f.maxBytes), finalURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}

	f.logger.Debug("page fetched",
		slog.String("url", finalURL),
		slog.String("host", doc.Host()))

	return doc, nil
}
