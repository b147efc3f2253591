package detect

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sydlexius/albumlink/internal/page"
)

const (
	typeMusicAlbum = "MusicAlbum"
	typeReview     = "Review"
)

// reviewNamePrefix matches localized "Review: Artist - Album" record names.
var (
	reviewNamePrefix = regexp.MustCompile(`(?i)^(?:recensie|review):\s+`)
	reviewNameSplit  = regexp.MustCompile(`\s+-\s+`)
)

// FromLinkedData reads schema.org JSON-LD blocks for a MusicAlbum, a Review
// of a MusicAlbum, or a review record named "Review: Artist - Album".
// Blocks that fail to decode are skipped.
func FromLinkedData(p page.Page) *Candidate {
	for _, block := range p.LinkedData() {
		var data any
		if err := json.Unmarshal([]byte(block), &data); err != nil {
			continue
		}
		for _, item := range flattenItems(data) {
			if c := fromLinkedItem(item); c != nil {
				return c
			}
		}
	}
	return nil
}

func fromLinkedItem(item map[string]any) *Candidate {
	name := stringField(item, "name")

	if hasType(item, typeMusicAlbum) && name != "" {
		return &Candidate{Album: name, Artist: byArtist(item)}
	}

	if hasType(item, typeReview) {
		if reviewed, ok := item["itemReviewed"].(map[string]any); ok {
			if reviewedName := stringField(reviewed, "name"); hasType(reviewed, typeMusicAlbum) && reviewedName != "" {
				return &Candidate{Album: reviewedName, Artist: byArtist(reviewed)}
			}
		}
	}

	if name != "" && reviewNamePrefix.MatchString(name) {
		cleaned := reviewNamePrefix.ReplaceAllString(name, "")
		parts := reviewNameSplit.Split(cleaned, -1)
		if len(parts) >= 2 {
			return &Candidate{
				Artist: strings.TrimSpace(parts[0]),
				Album:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
			}
		}
	}

	return nil
}

// flattenItems turns a decoded JSON-LD value into a list of objects,
// expanding top-level arrays and @graph containers.
func flattenItems(data any) []map[string]any {
	var items []map[string]any
	switch v := data.(type) {
	case []any:
		for _, elem := range v {
			items = append(items, flattenItems(elem)...)
		}
	case map[string]any:
		items = append(items, v)
		if graph, ok := v["@graph"].([]any); ok {
			items = append(items, flattenItems(graph)...)
		}
	}
	return items
}

// hasType reports whether @type equals want or, when @type is a list,
// contains it.
func hasType(item map[string]any, want string) bool {
	switch t := item["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, elem := range t {
			if s, ok := elem.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// byArtist returns the name of the album's artist, accepting a single
// object or a list of objects.
func byArtist(item map[string]any) string {
	switch a := item["byArtist"].(type) {
	case map[string]any:
		return stringField(a, "name")
	case []any:
		for _, elem := range a {
			if obj, ok := elem.(map[string]any); ok {
				if name := stringField(obj, "name"); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func stringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}
