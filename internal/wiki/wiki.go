// Package wiki fetches Wikipedia talk-page discussions, preferring the
// MediaWiki action API and falling back to scraping the rendered page.
package wiki

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrUnavailable marks any fetch or parse failure. Callers surface it as
// a single explicit failure; no partial analysis is attempted.
var ErrUnavailable = errors.New("page unavailable")

// Document is one fetched discussion section (or whole page when the
// anchored section was not found).
type Document struct {
	Title        string // Page title, e.g. "Talk:Article"
	Anchor       string // Requested section anchor, may be empty
	SectionFound bool   // False means whole-page fallback
	Wikitext     string // Raw wikitext (API path only)
	HTML         string // Rendered HTML for display
	Text         string // Plain text for analysis
}

// PageRef identifies a wiki page extracted from a URL
type PageRef struct {
	Lang   string // Subdomain language code, defaults to "en"
	Title  string
	Anchor string // URL fragment, percent-decoded
}

var langPattern = regexp.MustCompile(`^([a-z]{2,3})\.wikipedia\.org$`)

// ParsePageURL extracts the page title and optional section anchor from
// a /wiki/ URL such as https://en.wikipedia.org/wiki/Talk:Foo#Bar_section
func ParsePageURL(rawURL string) (PageRef, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PageRef{}, fmt.Errorf("parse URL: %w", err)
	}

	const marker = "/wiki/"
	idx := strings.Index(parsed.Path, marker)
	if idx < 0 {
		return PageRef{}, fmt.Errorf("not a /wiki/ URL: %s", rawURL)
	}

	title := parsed.Path[idx+len(marker):]
	if title == "" {
		return PageRef{}, fmt.Errorf("empty page title: %s", rawURL)
	}
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}

	anchor := parsed.Fragment // url.Parse already decodes the fragment

	lang := "en"
	if m := langPattern.FindStringSubmatch(parsed.Host); m != nil {
		lang = m[1]
	}

	return PageRef{Lang: lang, Title: title, Anchor: anchor}, nil
}

// APIEndpoint returns the action API endpoint for the page's wiki
func (r PageRef) APIEndpoint() string {
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", r.Lang)
}

// PageURL reconstructs the canonical page URL without the fragment
func (r PageRef) PageURL() string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", r.Lang, url.PathEscape(r.Title))
}
