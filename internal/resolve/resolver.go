// Package resolve turns an artist/album guess into a catalog match: it
// searches the catalog, scores the results, swaps a winning single for its
// parent album when one exists, and formats the result for display.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sydlexius/albumlink/internal/catalog"
)

var (
	// ErrNoSearchTerms is returned when both artist and album are blank.
	ErrNoSearchTerms = errors.New("no search terms provided")

	// ErrNoResults is returned when the search succeeds with no entries.
	ErrNoResults = errors.New("no results found")
)

// Failure kinds reported to callers.
const (
	KindInputEmpty     = "input_empty"
	KindUpstreamStatus = "upstream_status"
	KindNoResults      = "no_results"
	KindTransport      = "transport"
)

// FailureKind classifies an error returned by Resolve.
func FailureKind(err error) string {
	var statusErr *catalog.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSearchTerms):
		return KindInputEmpty
	case errors.Is(err, ErrNoResults):
		return KindNoResults
	case errors.As(err, &statusErr):
		return KindUpstreamStatus
	default:
		return KindTransport
	}
}

// Catalog is the subset of the catalog client the resolver needs.
type Catalog interface {
	SearchAlbums(ctx context.Context, term string) ([]catalog.Result, error)
	LookupArtistAlbums(ctx context.Context, artistID int64) ([]catalog.Result, error)
}

// Options controls output formatting.
type Options struct {
	// AppLinks rewrites catalog web URLs to the native player scheme.
	AppLinks bool
}

// Resolver finds the catalog entry for an artist/album pair.
type Resolver struct {
	catalog Catalog
	opts    Options
	logger  *slog.Logger
}

// New creates a Resolver.
func New(c Catalog, opts Options, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: c,
		opts:    opts,
		logger:  logger.With(slog.String("component", "resolver")),
	}
}

// SearchTerms joins the non-blank parts of artist and album with a space.
func SearchTerms(artist, album string) string {
	var parts []string
	for _, s := range []string{artist, album} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Resolve searches the catalog and returns the best match. Failures are one
// of ErrNoSearchTerms, ErrNoResults, *catalog.StatusError, or a transport
// error from the catalog.
func (r *Resolver) Resolve(ctx context.Context, artist, album string) (*Match, error) {
	terms := SearchTerms(artist, album)
	if terms == "" {
		return nil, ErrNoSearchTerms
	}

	results, err := r.catalog.SearchAlbums(ctx, terms)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	best := FindBestMatch(results, artist, album)
	r.logger.Debug("best match selected",
		slog.String("terms", terms),
		slog.String("match", best.String()),
		slog.String("kind", string(best.ReleaseKind())))

	if best.IsSingle() && best.ArtistID != 0 {
		if full := r.findFullAlbum(ctx, best.ArtistID, album); full != nil {
			r.logger.Debug("single replaced by full album",
				slog.String("single", best.CollectionName),
				slog.String("album", full.CollectionName))
			best = *full
		}
	}

	return ToMatch(&best, r.opts), nil
}

// findFullAlbum looks through the artist's discography for a non-single
// release named exactly like album. Lookup failures are logged and treated
// as no match.
func (r *Resolver) findFullAlbum(ctx context.Context, artistID int64, album string) *catalog.Result {
	results, err := r.catalog.LookupArtistAlbums(ctx, artistID)
	if err != nil {
		r.logger.Debug("full album lookup failed",
			slog.Int64("artist_id", artistID),
			slog.String("error", err.Error()))
		return nil
	}
	return FindFullAlbum(results, album)
}

// FindFullAlbum returns the first collection in results that is not a
// single and whose name, minus any "- EP" suffix, normalizes to the same
// string as album.
func FindFullAlbum(results []catalog.Result, album string) *catalog.Result {
	target := Normalize(album)
	for i := range results {
		res := &results[i]
		if !res.IsCollection() || res.IsSingle() {
			continue
		}
		if Normalize(catalog.StripEPSuffix(res.CollectionName)) == target {
			found := *res
			return &found
		}
	}
	return nil
}
