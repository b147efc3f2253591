package resolve

import (
	"net/url"
	"strings"

	"github.com/sydlexius/albumlink/internal/catalog"
)

const (
	catalogHost      = "music.apple.com"
	catalogAppScheme = "music"

	artworkSmall = "100x100"
	artworkLarge = "300x300"
)

// Match is the final answer for one album lookup.
type Match struct {
	AlbumName  string `json:"albumName"`
	ArtistName string `json:"artistName"`
	AlbumURL   string `json:"albumUrl"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// ToMatch formats a catalog result for display: the release suffix is
// dropped from the name, the link optionally opens the native player, and
// the artwork is upgraded to the larger size.
func ToMatch(r *catalog.Result, opts Options) *Match {
	m := &Match{
		AlbumName:  r.BaseName(),
		ArtistName: r.ArtistName,
		AlbumURL:   r.CollectionViewURL,
	}
	if opts.AppLinks {
		m.AlbumURL = AppURL(r.CollectionViewURL)
	}
	if r.ArtworkURL100 != "" {
		m.ArtworkURL = strings.Replace(r.ArtworkURL100, artworkSmall, artworkLarge, 1)
	}
	return m
}

// AppURL rewrites an https catalog URL on music.apple.com to the music://
// scheme so the operating system opens the player app. Other URLs are
// returned unchanged.
func AppURL(webURL string) string {
	u, err := url.Parse(webURL)
	if err != nil || u.Scheme != "https" || !strings.EqualFold(u.Host, catalogHost) {
		return webURL
	}
	u.Scheme = catalogAppScheme
	return u.String()
}
