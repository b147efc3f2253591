// Package identify ties detection and resolution together: given a page URL,
// a parsed page, or a manual query, it produces an Outcome describing what
// was detected and what the catalog matched.
package identify

import (
	"context"
	"log/slog"

	"github.com/sydlexius/albumlink/internal/detect"
	"github.com/sydlexius/albumlink/internal/page"
	"github.com/sydlexius/albumlink/internal/resolve"
)

// Outcome is the result of one identification. Candidate is nil when nothing
// could be detected. On resolve failure Match is nil, Error and ErrorKind
// describe the failure, and ManualQuery holds an editable "Artist - Album"
// prefill for a retry.
type Outcome struct {
	URL         string            `json:"url,omitempty"`
	Candidate   *detect.Candidate `json:"candidate"`
	Match       *resolve.Match    `json:"match"`
	Error       string            `json:"error,omitempty"`
	ErrorKind   string            `json:"errorKind,omitempty"`
	ManualQuery string            `json:"manualQuery,omitempty"`
}

// Detected reports whether a candidate was found.
func (o *Outcome) Detected() bool { return o.Candidate != nil }

// Matched reports whether the catalog produced a match.
func (o *Outcome) Matched() bool { return o.Match != nil }

// Fetcher downloads and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*page.Document, error)
}

// Service runs the identification pipeline.
type Service struct {
	fetcher  Fetcher
	detector *detect.Detector
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(fetcher Fetcher, detector *detect.Detector, resolver *resolve.Resolver, logger *slog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		detector: detector,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "identify")),
	}
}

// Detect fetches pageURL and runs detection only.
func (s *Service) Detect(ctx context.Context, pageURL string) (*detect.Candidate, error) {
	doc, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(doc), nil
}

// DetectPage runs detection on an already parsed page.
func (s *Service) DetectPage(p page.Page) *detect.Candidate {
	return s.detector.Detect(p)
}

// IdentifyURL fetches pageURL and identifies it. Only fetch failures are
// returned as errors; detection and resolve failures are reported in the
// Outcome.
func (s *Service) IdentifyURL(ctx context.Context, pageURL string) (*Outcome, error) {
	doc, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	out := s.IdentifyPage(ctx, doc)
	out.URL = pageURL
	return out, nil
}

// IdentifyPage detects an album on p and resolves it.
func (s *Service) IdentifyPage(ctx context.Context, p page.Page) *Outcome {
	c := s.detector.Detect(p)
	if c == nil {
		s.logger.Info("no album detected", slog.String("host", p.Host()))
		return &Outcome{}
	}
	out := s.resolve(ctx, c.Artist, c.Album)
	out.Candidate = c
	return out
}

// Search resolves an explicit artist/album pair.
func (s *Service) Search(ctx context.Context, artist, album string) *Outcome {
	return s.resolve(ctx, artist, album)
}

// SearchQuery resolves a free-form "Artist - Album" query. A query without
// a dash separator is searched as an album name.
func (s *Service) SearchQuery(ctx context.Context, query string) *Outcome {
	artist, album := detect.SplitQuery(query)
	return s.resolve(ctx, artist, album)
}

func (s *Service) resolve(ctx context.Context, artist, album string) *Outcome {
	m, err := s.resolver.Resolve(ctx, artist, album)
	if err != nil {
		kind := resolve.FailureKind(err)
		s.logger.Warn("album lookup failed",
			slog.String("artist", artist),
			slog.String("album", album),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return &Outcome{
			Error:       err.Error(),
			ErrorKind:   kind,
			ManualQuery: ManualQuery(artist, album),
		}
	}
	s.logger.Info("album matched",
		slog.String("album", m.AlbumName),
		slog.String("artist", m.ArtistName))
	return &Outcome{Match: m}
}

// ManualQuery builds the editable retry text shown after a failed lookup.
func ManualQuery(artist, album string) string {
	c := detect.Candidate{Artist: artist, Album: album}
	return c.Query()
}
