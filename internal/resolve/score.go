package resolve

import (
	"strings"
	"unicode"

	"github.com/sydlexius/albumlink/internal/catalog"
)

// Scoring weights. Exact album plus exact artist must outweigh the single
// penalty; otherwise the values are tunable.
const (
	WeightExact        = 10
	WeightContains     = 5
	PenaltySingle      = -5
	BonusTrackCount    = 3
	FullAlbumMinTracks = 5

	// initialBestScore lets the first result with any score take the lead;
	// results scoring below it leave results[0] in place.
	initialBestScore = -1
)

// Normalize lowercases s, removes everything except ASCII letters, digits
// and whitespace, collapses whitespace runs to one space, and trims.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Score rates how well r matches the target artist and album. Both targets
// must already be normalized; an empty artist skips artist matching.
func Score(r *catalog.Result, artist, album string) int {
	score := 0

	resultAlbum := Normalize(r.BaseName())
	switch {
	case resultAlbum == album:
		score += WeightExact
	case strings.Contains(resultAlbum, album) || strings.Contains(album, resultAlbum):
		score += WeightContains
	}

	if artist != "" {
		resultArtist := Normalize(r.ArtistName)
		switch {
		case resultArtist == artist:
			score += WeightExact
		case strings.Contains(resultArtist, artist) || strings.Contains(artist, resultArtist):
			score += WeightContains
		}
	}

	if r.IsSingle() {
		score += PenaltySingle
	}
	if r.TrackCount >= FullAlbumMinTracks {
		score += BonusTrackCount
	}

	return score
}

// FindBestMatch returns the highest scoring result. Ties keep the earlier
// entry, so the upstream ranking breaks them. results must be non-empty.
func FindBestMatch(results []catalog.Result, artist, album string) catalog.Result {
	targetArtist := Normalize(artist)
	targetAlbum := Normalize(album)

	best := results[0]
	bestScore := initialBestScore
	for i := range results {
		if score := Score(&results[i], targetArtist, targetAlbum); score > bestScore {
			bestScore = score
			best = results[i]
		}
	}
	return best
}
