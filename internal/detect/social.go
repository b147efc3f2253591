package detect

import "github.com/sydlexius/albumlink/internal/page"

// Meta tags whose text is run through ParseArtistAlbum, in order.
var socialTextKeys = []string{"og:title", "og:description", "twitter:title"}

// FromSocialMeta reads the Open Graph music:album/music:musician tags, and
// otherwise parses the social title and description tags.
func FromSocialMeta(p page.Page) *Candidate {
	if album := p.Meta("music:album"); album != "" {
		return &Candidate{Album: album, Artist: p.Meta("music:musician")}
	}

	for _, key := range socialTextKeys {
		text := p.Meta(key)
		if text == "" {
			continue
		}
		if artist, album, ok := ParseArtistAlbum(text); ok {
			return &Candidate{Artist: artist, Album: album}
		}
	}
	return nil
}

// FromTitle parses the document title. It is the last resort.
func FromTitle(p page.Page) *Candidate {
	title := p.Title()
	if title == "" {
		return nil
	}
	artist, album, ok := ParseArtistAlbum(title)
	if !ok {
		return nil
	}
	return &Candidate{Artist: artist, Album: album}
}
