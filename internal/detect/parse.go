package detect

import (
	"regexp"
	"strings"
)

// Boilerplate removed before pattern matching, applied in order.
var boilerplate = []*regexp.Regexp{
	regexp.MustCompile(`\s*\|\s*.+$`),
	regexp.MustCompile(`(?i)\s*[-–—]\s*(?:album\s+)?review.*$`),
	regexp.MustCompile(`(?i)\s*(?:album\s+)?review$`),
	regexp.MustCompile(`(?i)^review:\s*`),
	regexp.MustCompile(`(?i)^recensie:\s*`),
}

var (
	dashPattern  = regexp.MustCompile(`^(.+?)\s*[-–—]\s+(.+)$`)
	byPattern    = regexp.MustCompile(`(?i)^['"“”]?(.+?)['"“”]?\s+by\s+(.+)$`)
	colonPattern = regexp.MustCompile(`^(.+?):\s+(.+)$`)

	querySeparator = regexp.MustCompile(`\s*[-–—]\s+`)
	quoteEdges     = regexp.MustCompile(`^['"“”]+|['"“”]+$`)
)

// ParseArtistAlbum extracts an artist and album from free text such as a page
// title ("Artist - Album | Site"), a headline ("“Album” by Artist") or a
// label ("Artist: Album"). It reports false when no pattern matches.
func ParseArtistAlbum(text string) (artist, album string, ok bool) {
	cleaned := text
	for _, re := range boilerplate {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", "", false
	}

	if m := dashPattern.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := byPattern.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), true
	}
	if m := colonPattern.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

// SplitQuery splits a manually entered "Artist - Album" query. Input without
// a dash separator is treated as an album name alone.
func SplitQuery(query string) (artist, album string) {
	query = strings.TrimSpace(query)
	parts := querySeparator.Split(query, -1)
	if len(parts) >= 2 {
		return parts[0], strings.Join(parts[1:], " - ")
	}
	return "", query
}

// StripQuotes removes leading and trailing straight or curly double quotes
// and apostrophes.
func StripQuotes(s string) string {
	return strings.TrimSpace(quoteEdges.ReplaceAllString(s, ""))
}
