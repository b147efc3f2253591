package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sydlexius/albumlink/internal/catalog"
)

// fakeCatalog records calls and returns canned responses.
type fakeCatalog struct {
	search      []catalog.Result
	searchErr   error
	lookup      []catalog.Result
	lookupErr   error
	searchTerms []string
	lookupIDs   []int64
}

func (f *fakeCatalog) SearchAlbums(_ context.Context, term string) ([]catalog.Result, error) {
	f.searchTerms = append(f.searchTerms, term)
	return f.search, f.searchErr
}

func (f *fakeCatalog) LookupArtistAlbums(_ context.Context, artistID int64) ([]catalog.Result, error) {
	f.lookupIDs = append(f.lookupIDs, artistID)
	return f.lookup, f.lookupErr
}

func newTestResolver(t *testing.T, c Catalog) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(c, Options{AppLinks: true}, logger)
}

func TestResolve_NoSearchTerms(t *testing.T) {
	fc := &fakeCatalog{}
	r := newTestResolver(t, fc)

	for _, in := range [][2]string{{"", ""}, {"  ", "\t"}} {
		_, err := r.Resolve(context.Background(), in[0], in[1])
		if !errors.Is(err, ErrNoSearchTerms) {
			t.Errorf("Resolve(%q, %q) error = %v, want ErrNoSearchTerms", in[0], in[1], err)
		}
		if FailureKind(err) != KindInputEmpty {
			t.Errorf("FailureKind = %q", FailureKind(err))
		}
	}
	if len(fc.searchTerms) != 0 {
		t.Errorf("expected no catalog calls, got %v", fc.searchTerms)
	}
}

func TestResolve_SearchTerms(t *testing.T) {
	fc := &fakeCatalog{search: []catalog.Result{{CollectionName: "Kid A", ArtistName: "Radiohead"}}}
	r := newTestResolver(t, fc)

	if _, err := r.Resolve(context.Background(), "", "Kid A"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := r.Resolve(context.Background(), " Radiohead ", "Kid A"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fc.searchTerms[0] != "Kid A" || fc.searchTerms[1] != "Radiohead Kid A" {
		t.Errorf("unexpected search terms %q", fc.searchTerms)
	}
}

func TestResolve_NoResults(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{search: nil})

	_, err := r.Resolve(context.Background(), "Nobody", "Nothing")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if FailureKind(err) != KindNoResults {
		t.Errorf("FailureKind = %q", FailureKind(err))
	}
}

func TestResolve_UpstreamErrors(t *testing.T) {
	statusErr := &catalog.StatusError{Endpoint: "search", StatusCode: 503}
	r := newTestResolver(t, &fakeCatalog{searchErr: statusErr})
	_, err := r.Resolve(context.Background(), "Radiohead", "Kid A")
	if FailureKind(err) != KindUpstreamStatus {
		t.Errorf("FailureKind(%v) = %q, want %q", err, FailureKind(err), KindUpstreamStatus)
	}
	if err.Error() != "iTunes API returned 503" {
		t.Errorf("unexpected message %q", err.Error())
	}

	transportErr := &catalog.UnavailableError{Endpoint: "search", Cause: fmt.Errorf("connection reset")}
	r = newTestResolver(t, &fakeCatalog{searchErr: transportErr})
	_, err = r.Resolve(context.Background(), "Radiohead", "Kid A")
	if FailureKind(err) != KindTransport {
		t.Errorf("FailureKind(%v) = %q, want %q", err, FailureKind(err), KindTransport)
	}
}

func TestResolve_SingleWithoutFullAlbum(t *testing.T) {
	fc := &fakeCatalog{
		search: []catalog.Result{{
			WrapperType:       catalog.WrapperCollection,
			ArtistID:          136975,
			ArtistName:        "The Beatles",
			CollectionName:    "Yesterday - Single",
			CollectionViewURL: "https://music.apple.com/us/album/yesterday/1?uo=4",
			ArtworkURL100:     "https://is1-ssl.mzstatic.com/image/thumb/y/100x100bb.jpg",
			TrackCount:        1,
		}},
		lookup: []catalog.Result{
			{WrapperType: "artist", ArtistName: "The Beatles", ArtistID: 136975},
			{WrapperType: catalog.WrapperCollection, ArtistName: "The Beatles", CollectionName: "Help!", TrackCount: 14},
		},
	}
	r := newTestResolver(t, fc)

	m, err := r.Resolve(context.Background(), "The Beatles", "Yesterday")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(fc.lookupIDs) != 1 || fc.lookupIDs[0] != 136975 {
		t.Errorf("expected one lookup for artist 136975, got %v", fc.lookupIDs)
	}
	if m.AlbumName != "Yesterday" {
		t.Errorf("AlbumName = %q, want Yesterday", m.AlbumName)
	}
	if m.AlbumURL != "music://music.apple.com/us/album/yesterday/1?uo=4" {
		t.Errorf("AlbumURL = %q", m.AlbumURL)
	}
	if m.ArtworkURL != "https://is1-ssl.mzstatic.com/image/thumb/y/300x300bb.jpg" {
		t.Errorf("ArtworkURL = %q", m.ArtworkURL)
	}
}

func TestResolve_SingleReplacedByFullAlbum(t *testing.T) {
	fc := &fakeCatalog{
		search: []catalog.Result{{
			WrapperType:    catalog.WrapperCollection,
			ArtistID:       42,
			ArtistName:     "Phoebe Bridgers",
			CollectionName: "Punisher - Single",
			TrackCount:     1,
		}},
		lookup: []catalog.Result{
			{WrapperType: "artist", ArtistName: "Phoebe Bridgers"},
			{WrapperType: catalog.WrapperCollection, ArtistName: "Phoebe Bridgers", CollectionName: "Punisher - Single"},
			{WrapperType: catalog.WrapperCollection, ArtistName: "Phoebe Bridgers", CollectionName: "Punisher",
				CollectionViewURL: "https://music.apple.com/us/album/punisher/2", TrackCount: 11},
			{WrapperType: catalog.WrapperCollection, ArtistName: "Phoebe Bridgers", CollectionName: "Punisher (Deluxe)"},
		},
	}
	r := newTestResolver(t, fc)

	m, err := r.Resolve(context.Background(), "Phoebe Bridgers", "Punisher")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.AlbumName != "Punisher" || m.AlbumURL != "music://music.apple.com/us/album/punisher/2" {
		t.Errorf("expected full album to replace the single, got %+v", m)
	}
	if m.ArtworkURL != "" {
		t.Errorf("expected no artwork, got %q", m.ArtworkURL)
	}
}

func TestResolve_LookupFailureKeepsSingle(t *testing.T) {
	fc := &fakeCatalog{
		search: []catalog.Result{{
			ArtistID: 7, ArtistName: "Low", CollectionName: "Hey What - Single", TrackCount: 1,
		}},
		lookupErr: &catalog.StatusError{Endpoint: "lookup", StatusCode: 500},
	}
	r := newTestResolver(t, fc)

	m, err := r.Resolve(context.Background(), "Low", "Hey What")
	if err != nil {
		t.Fatalf("lookup failure must not surface, got %v", err)
	}
	if m.AlbumName != "Hey What" {
		t.Errorf("AlbumName = %q", m.AlbumName)
	}
}

func TestResolve_SingleWithoutArtistIDSkipsLookup(t *testing.T) {
	fc := &fakeCatalog{search: []catalog.Result{{ArtistName: "Low", CollectionName: "Hey What - Single"}}}
	r := newTestResolver(t, fc)

	if _, err := r.Resolve(context.Background(), "Low", "Hey What"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(fc.lookupIDs) != 0 {
		t.Errorf("expected no lookup, got %v", fc.lookupIDs)
	}
}

func TestFindFullAlbum(t *testing.T) {
	results := []catalog.Result{
		{WrapperType: "artist", ArtistName: "Slowdive", CollectionName: "Souvlaki"},
		{WrapperType: catalog.WrapperCollection, CollectionName: "Souvlaki - Single"},
		{WrapperType: catalog.WrapperCollection, CollectionName: "Souvlaki Space Station"},
		{WrapperType: catalog.WrapperCollection, CollectionName: "SOUVLAKI! - EP", CollectionID: 1},
		{WrapperType: catalog.WrapperCollection, CollectionName: "Souvlaki", CollectionID: 2},
	}

	got := FindFullAlbum(results, "Souvlaki")
	if got == nil || got.CollectionID != 1 {
		t.Fatalf("expected the first exact normalized match (EP stripped), got %+v", got)
	}

	if got := FindFullAlbum(results, "Pygmalion"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestFindFullAlbum_NeverReturnsInexactName(t *testing.T) {
	results := []catalog.Result{
		{WrapperType: catalog.WrapperCollection, CollectionName: "Help! (Remastered)"},
		{WrapperType: catalog.WrapperCollection, CollectionName: "Help"},
		{WrapperType: catalog.WrapperCollection, CollectionName: "Yesterday and Today"},
	}
	for _, target := range []string{"Help!", "Yesterday", "Abbey Road", ""} {
		got := FindFullAlbum(results, target)
		if got == nil {
			continue
		}
		if Normalize(catalog.StripEPSuffix(got.CollectionName)) != Normalize(target) {
			t.Errorf("FindFullAlbum(%q) returned %q", target, got.CollectionName)
		}
	}
}

func TestAppURL(t *testing.T) {
	cases := map[string]string{
		"https://music.apple.com/us/album/x/1":  "music://music.apple.com/us/album/x/1",
		"https://itunes.apple.com/us/album/x/1": "https://itunes.apple.com/us/album/x/1",
		"http://music.apple.com/us/album/x/1":   "http://music.apple.com/us/album/x/1",
		"":                                      "",

		"https://music.apple.com/us/album/x/1?uo=4":            "music://music.apple.com/us/album/x/1?uo=4",
		"https://music.apple.com.evil.example/us/album/x/1":    "https://music.apple.com.evil.example/us/album/x/1",
		"https://music.apple.com:8443/us/album/x/1":            "https://music.apple.com:8443/us/album/x/1",
		"https://user@music.apple.com.evil.example/album/x/1":  "https://user@music.apple.com.evil.example/album/x/1",
		"https://evil.example/?next=https://music.apple.com/x": "https://evil.example/?next=https://music.apple.com/x",
	}
	for in, want := range cases {
		if got := AppURL(in); got != want {
			t.Errorf("AppURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToMatch_WithoutAppLinks(t *testing.T) {
	r := &catalog.Result{
		ArtistName:        "Beach House",
		CollectionName:    "Depression Cherry - EP",
		CollectionViewURL: "https://music.apple.com/us/album/dc/3",
	}
	m := ToMatch(r, Options{})
	if m.AlbumName != "Depression Cherry" {
		t.Errorf("AlbumName = %q", m.AlbumName)
	}
	if m.AlbumURL != "https://music.apple.com/us/album/dc/3" {
		t.Errorf("AlbumURL = %q", m.AlbumURL)
	}
}
