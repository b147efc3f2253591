// Package detect guesses which album a web page is about. Strategies are
// tried in priority order; the first one to produce an album name wins.
package detect

import (
	"fmt"
	"log/slog"

	"github.com/sydlexius/albumlink/internal/page"
)

// Candidate is an artist/album guess extracted from a page, prior to
// catalog lookup. Artist is empty when the page did not name one.
type Candidate struct {
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album"`
	Source string `json:"source"`
}

// Query returns the "Artist - Album" form of the candidate, or just the album
// when no artist is known.
func (c *Candidate) Query() string {
	if c.Artist == "" {
		return c.Album
	}
	return c.Artist + " - " + c.Album
}

// Strategy names, reported in Candidate.Source.
const (
	SourceLinkedData = "linked-data"
	SourceSocial     = "social"
	SourceSite       = "site"
	SourceTitle      = "title"
)

// Strategy is one extraction attempt. Extract returns nil when the page
// offers nothing usable to this strategy.
type Strategy struct {
	Name    string
	Extract func(p page.Page) *Candidate
}

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: SourceLinkedData, Extract: FromLinkedData},
		{Name: SourceSocial, Extract: FromSocialMeta},
		{Name: SourceSite, Extract: FromSiteRules},
		{Name: SourceTitle, Extract: FromTitle},
	}
}

// Detector runs strategies against a page.
type Detector struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New creates a Detector with the default strategies.
func New(logger *slog.Logger) *Detector {
	return NewWithStrategies(logger, DefaultStrategies())
}

// NewWithStrategies creates a Detector with a custom strategy chain.
func NewWithStrategies(logger *slog.Logger, strategies []Strategy) *Detector {
	return &Detector{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "detector")),
	}
}

// Detect returns the first candidate with a non-empty album, with quotes
// stripped from both fields, or nil when no strategy recognizes the page.
func (d *Detector) Detect(p page.Page) *Candidate {
	for _, s := range d.strategies {
		c := d.run(s, p)
		if c == nil {
			continue
		}
		album := StripQuotes(c.Album)
		if album == "" {
			continue
		}

		found := &Candidate{
			Artist: StripQuotes(c.Artist),
			Album:  album,
			Source: s.Name,
		}
		d.logger.Debug("album detected",
			slog.String("strategy", s.Name),
			slog.String("host", p.Host()),
			slog.String("artist", found.Artist),
			slog.String("album", found.Album))
		return found
	}

	d.logger.Debug("no album detected", slog.String("host", p.Host()))
	return nil
}

// run calls one strategy, converting a panic into "found nothing".
func (d *Detector) run(s Strategy, p page.Page) (c *Candidate) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("detection strategy panicked",
				slog.String("strategy", s.Name),
				slog.String("panic", fmt.Sprint(r)))
			c = nil
		}
	}()
	return s.Extract(p)
}
