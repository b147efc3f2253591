// Package page exposes the signals of a web page that album detection reads:
// linked-data blocks, meta tags, DOM selector text, the title, and the host.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Page is the read-only view of a web page used by the detector.
type Page interface {
	// Host returns the page's hostname, lowercased, without port.
	Host() string

	// Title returns the document title with whitespace collapsed.
	Title() string

	// LinkedData returns the raw contents of every
	// script[type="application/ld+json"] block in document order.
	LinkedData() []string

	// Meta returns the content of the first meta tag whose property or name
	// attribute equals key, or "" if absent.
	Meta(key string) string

	// Text returns the trimmed text of the first element matching selector.
	Text(selector string) string

	// TextAll returns the trimmed text of every element matching selector.
	TextAll(selector string) []string
}

// Document implements Page over a parsed goquery document.
type Document struct {
	doc  *goquery.Document
	host string
}

// Parse reads HTML from r. pageURL supplies the hostname and may be empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{doc: doc, host: hostOf(pageURL)}, nil
}

// ParseString is Parse for an in-memory HTML string.
func ParseString(html, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(html), pageURL)
}

// Host returns the hostname the document was loaded from.
func (d *Document) Host() string { return d.host }

// Title returns the <title> text.
func (d *Document) Title() string {
	return collapseSpace(d.doc.Find("title").First().Text())
}

// LinkedData returns the JSON-LD script contents.
func (d *Document) LinkedData() []string {
	var blocks []string
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

// Meta looks up meta[property=key] first, then meta[name=key].
func (d *Document) Meta(key string) string {
	for _, attr := range []string{"property", "name"} {
		sel := fmt.Sprintf(`meta[%s=%q]`, attr, key)
		if content, ok := d.doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

// Text returns the first match's text. Invalid selectors yield "".
func (d *Document) Text(selector string) string {
	sel, ok := d.find(selector)
	if !ok {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}

// TextAll returns the text of every match.
func (d *Document) TextAll(selector string) []string {
	sel, ok := d.find(selector)
	if !ok {
		return nil
	}
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})
	return texts
}

// find compiles selector before matching so a malformed selector does not
// panic inside goquery.
func (d *Document) find(selector string) (*goquery.Selection, bool) {
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, false
	}
	return d.doc.FindMatcher(compiled), true
}

func hostOf(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
