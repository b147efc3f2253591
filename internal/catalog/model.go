package catalog

import (
	"fmt"
	"regexp"
)

// ReleaseKind classifies a catalog collection by its naming convention.
type ReleaseKind string

// Release kinds.
const (
	KindAlbum  ReleaseKind = "album"
	KindSingle ReleaseKind = "single"
	KindEP     ReleaseKind = "ep"
)

// WrapperCollection marks a release entry, as opposed to the artist's own
// profile record returned first by an artist lookup.
const WrapperCollection = "collection"

var (
	singleSuffix  = regexp.MustCompile(`(?i)\s*-\s*Single$`)
	epSuffix      = regexp.MustCompile(`(?i)\s*-\s*EP$`)
	releaseSuffix = regexp.MustCompile(`(?i)\s*-\s*(?:Single|EP)$`)
)

// Result is one entry from the search or lookup endpoint.
type Result struct {
	WrapperType       string `json:"wrapperType"`
	CollectionType    string `json:"collectionType,omitempty"`
	ArtistType        string `json:"artistType,omitempty"`
	ArtistID          int64  `json:"artistId,omitempty"`
	CollectionID      int64  `json:"collectionId,omitempty"`
	ArtistName        string `json:"artistName"`
	CollectionName    string `json:"collectionName,omitempty"`
	CollectionViewURL string `json:"collectionViewUrl,omitempty"`
	ArtworkURL60      string `json:"artworkUrl60,omitempty"`
	ArtworkURL100     string `json:"artworkUrl100,omitempty"`
	TrackCount        int    `json:"trackCount,omitempty"`
	ReleaseDate       string `json:"releaseDate,omitempty"`
	PrimaryGenreName  string `json:"primaryGenreName,omitempty"`
	Country           string `json:"country,omitempty"`
}

// ReleaseKind derives album, single or EP from the collection name suffix.
func (r *Result) ReleaseKind() ReleaseKind {
	switch {
	case singleSuffix.MatchString(r.CollectionName):
		return KindSingle
	case epSuffix.MatchString(r.CollectionName):
		return KindEP
	default:
		return KindAlbum
	}
}

// IsSingle reports whether the collection name ends with "- Single".
func (r *Result) IsSingle() bool {
	return singleSuffix.MatchString(r.CollectionName)
}

// IsCollection reports whether the entry is a release rather than an
// artist profile.
func (r *Result) IsCollection() bool {
	return r.WrapperType == WrapperCollection
}

// BaseName returns the collection name without a "- Single" or "- EP"
// suffix.
func (r *Result) BaseName() string {
	return StripReleaseSuffix(r.CollectionName)
}

// String is used in log output.
func (r *Result) String() string {
	return fmt.Sprintf("%s - %s (%d tracks)", r.ArtistName, r.CollectionName, r.TrackCount)
}

// StripReleaseSuffix removes a trailing "- Single" or "- EP".
func StripReleaseSuffix(name string) string {
	return releaseSuffix.ReplaceAllString(name, "")
}

// StripEPSuffix removes a trailing "- EP" only.
func StripEPSuffix(name string) string {
	return epSuffix.ReplaceAllString(name, "")
}

// response is the envelope of both the search and lookup endpoints.
type response struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}
