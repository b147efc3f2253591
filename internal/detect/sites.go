package detect

import (
	"strings"

	"github.com/sydlexius/albumlink/internal/page"
)

// SiteRule pairs a hostname predicate with a hand-tuned extractor for that
// site's markup.
type SiteRule struct {
	Name    string
	Matches func(host string) bool
	Extract func(p page.Page) *Candidate
}

// SiteRules is the ordered table of known review sites. Adding a site means
// appending a rule.
var SiteRules = []SiteRule{
	{
		Name:    "pitchfork",
		Matches: hostContains("pitchfork.com"),
		Extract: separateFields(
			[]string{`[data-testid="SplitScreenContentHeaderArtist"]`, ".SplitScreenContent-prefix"},
			[]string{`[data-testid="SplitScreenContentHeaderReviewTitle"]`, ".SplitScreenContent-mainContent h1"},
		),
	},
	{
		Name:    "nme",
		Matches: hostContains("nme.com"),
		Extract: parsedHeadline(".tdb-title-text", "h1.entry-title"),
	},
	{
		Name:    "rollingstone",
		Matches: hostContains("rollingstone.com"),
		Extract: parsedHeadline("h1"),
	},
	{
		Name:    "albumoftheyear",
		Matches: hostContains("albumoftheyear.org"),
		Extract: separateFields([]string{".artist-title a"}, []string{".albumTitle"}),
	},
	{
		Name:    "rateyourmusic",
		Matches: hostContains("rateyourmusic.com"),
		Extract: separateFields([]string{"span.album_artist_small a, a.artist"}, []string{".album_title"}),
	},
	{
		Name:    "oor",
		Matches: hostContains("oor.nl"),
		Extract: oorHeadings,
	},
	{
		Name:    "stereogum",
		Matches: hostContains("stereogum.com"),
		Extract: parsedHeadline("h1.headline"),
	},
	{
		Name:    "consequence",
		Matches: hostContains("consequence.net", "consequenceofsound.net"),
		Extract: parsedHeadline("h1.entry-title, h1.single-title"),
	},
	{
		Name:    "thequietus",
		Matches: hostContains("thequietus.com"),
		Extract: parsedHeadline("h1"),
	},
}

// FromSiteRules applies the rules whose predicate matches the page host.
// Pages on unregistered hosts yield nil.
func FromSiteRules(p page.Page) *Candidate {
	host := p.Host()
	if host == "" {
		return nil
	}
	for _, rule := range SiteRules {
		if !rule.Matches(host) {
			continue
		}
		if c := rule.Extract(p); c != nil {
			return c
		}
	}
	return nil
}

func hostContains(domains ...string) func(string) bool {
	return func(host string) bool {
		for _, d := range domains {
			if strings.Contains(host, d) {
				return true
			}
		}
		return false
	}
}

// separateFields reads artist and album from their own elements. Each field
// takes the first non-empty selector; both are required.
func separateFields(artistSelectors, albumSelectors []string) func(page.Page) *Candidate {
	return func(p page.Page) *Candidate {
		artist := firstText(p, artistSelectors)
		album := firstText(p, albumSelectors)
		if artist == "" || album == "" {
			return nil
		}
		return &Candidate{Artist: artist, Album: album}
	}
}

// parsedHeadline runs the first non-empty headline through ParseArtistAlbum.
func parsedHeadline(selectors ...string) func(page.Page) *Candidate {
	return func(p page.Page) *Candidate {
		title := firstText(p, selectors)
		if title == "" {
			return nil
		}
		artist, album, ok := ParseArtistAlbum(title)
		if !ok {
			return nil
		}
		return &Candidate{Artist: artist, Album: album}
	}
}

// oorHeadings reads the first two Elementor headings as artist and album.
func oorHeadings(p page.Page) *Candidate {
	headings := p.TextAll(".elementor-heading-title")
	if len(headings) < 2 || headings[0] == "" || headings[1] == "" {
		return nil
	}
	return &Candidate{Artist: headings[0], Album: headings[1]}
}

func firstText(p page.Page, selectors []string) string {
	for _, sel := range selectors {
		if text := p.Text(sel); text != "" {
			return text
		}
	}
	return ""
}
