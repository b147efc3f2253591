package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/albumlink/internal/identify"
)

const searchAbbeyRoad = `{"resultCount":2,"results":[
	{"wrapperType":"collection","artistId":1,"artistName":"Beatles Tribute Band","collectionName":"Abbey Road",
	 "collectionViewUrl":"https://music.apple.com/us/album/abbey-road/9","trackCount":17},
	{"wrapperType":"collection","artistId":136975,"artistName":"The Beatles","collectionName":"Abbey Road",
	 "collectionViewUrl":"https://music.apple.com/us/album/abbey-road/1441164426?uo=4",
	 "artworkUrl100":"https://is1-ssl.mzstatic.com/image/thumb/Music/abbey/100x100bb.jpg","trackCount":17}]}`

type cliTestEnv struct {
	configPath string
	pages      *httptest.Server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" && r.URL.Query().Get("term") == "The Beatles Abbey Road" {
			w.Write([]byte(searchAbbeyRoad)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"resultCount":0,"results":[]}`)) //nolint:errcheck
	}))
	t.Cleanup(catalogSrv.Close)

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<script type="application/ld+json">{"@type":"MusicAlbum","name":"Abbey Road","byArtist":{"name":"The Beatles"}}</script>
			<title>Some review</title></head></html>`)) //nolint:errcheck
	}))
	t.Cleanup(pages.Close)

	configPath := filepath.Join(t.TempDir(), "albumlink.yaml")
	body := "catalog:\n  base_url: " + catalogSrv.URL + "\n  requests_per_second: 0\nfetch:\n  requests_per_second: 0\n  allow_private_networks: true\n"
	if err := os.WriteFile(configPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return &cliTestEnv{configPath: configPath, pages: pages}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLISearchQuery(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"search", "The Beatles - Abbey Road"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// A buffer is not a terminal, so output is JSON.
	var out identify.Outcome
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decoding %q: %v", stdout, err)
	}
	if out.Match == nil || out.Match.ArtistName != "The Beatles" {
		t.Fatalf("unexpected match %+v", out.Match)
	}
	if out.Match.AlbumURL != "music://music.apple.com/us/album/abbey-road/1441164426?uo=4" {
		t.Errorf("albumUrl = %q", out.Match.AlbumURL)
	}
}

func TestCLISearchFlagsNoResults(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"search", "--artist", "Nobody", "--album", "Nothing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no_results") {
		t.Fatalf("expected no_results error, got %v", err)
	}
	if !strings.Contains(stdout, `"manualQuery": "Nobody - Nothing"`) {
		t.Errorf("expected manual query in output, got %s", stdout)
	}
}

func TestCLISearchRejectsQueryAndFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"search", "x - y", "--artist", "x"}, env.configPath); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCLIIdentify(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"identify", env.pages.URL + "/review"}, env.configPath)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	var out identify.Outcome
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decoding %q: %v", stdout, err)
	}
	if out.Candidate == nil || out.Candidate.Source != "linked-data" {
		t.Fatalf("unexpected candidate %+v", out.Candidate)
	}
	if out.Match == nil || out.Match.ArtworkURL != "https://is1-ssl.mzstatic.com/image/thumb/Music/abbey/300x300bb.jpg" {
		t.Errorf("unexpected match %+v", out.Match)
	}
}

func TestCLIDetect(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"detect", env.pages.URL}, env.configPath)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !strings.Contains(stdout, `"album": "Abbey Road"`) || !strings.Contains(stdout, `"artist": "The Beatles"`) {
		t.Errorf("unexpected output %s", stdout)
	}
}

func TestCLIBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"search", "a - b"}, path); err == nil {
		t.Fatal("expected config error")
	}
}

func TestRenderKeyValuesSkipsEmpty(t *testing.T) {
	out := renderKeyValues([][2]string{{"Album", "Abbey Road"}, {"Artwork", ""}})
	if !strings.Contains(out, "Abbey Road") {
		t.Errorf("missing value in %q", out)
	}
	if strings.Contains(out, "Artwork") {
		t.Errorf("empty row rendered in %q", out)
	}
}
