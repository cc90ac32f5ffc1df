package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/policyref/policyref/internal/extract"
	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/worker"
)

// Scraper fetches rendered talk pages directly and slices sections out
// of the served HTML. It is the fallback path when the action API is
// not usable; robots.txt is honored before every fetch.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
	limiter    *worker.Limiter
	baseURL    string // Overrides the wiki host in tests
}

func (s *Scraper) pageURL(ref PageRef) string {
	if s.baseURL != "" {
		return s.baseURL + "/wiki/" + ref.Title
	}
	return ref.PageURL()
}

// NewScraper creates a scraper from configuration.
func NewScraper(cfg *model.Config) *Scraper {
	return &Scraper{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		robots:    NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:   worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
	}
}

// ScrapeSection fetches the rendered page and slices the anchored
// section from the article body. A missing section falls back to the
// whole article body (SectionFound=false).
func (s *Scraper) ScrapeSection(ctx context.Context, rawURL string) (*Document, error) {
	ref, err := ParsePageURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !s.robots.Allowed(ctx, s.pageURL(ref)) {
		return nil, fmt.Errorf("%w: disallowed by robots.txt", ErrUnavailable)
	}

	if err := s.limiter.Wait(ctx, s.pageURL(ref)); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	page, err := s.fetch(ctx, s.pageURL(ref))
	if err != nil {
		return nil, err
	}

	body, err := contentHTML(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sectionHTML := body
	found := false
	if ref.Anchor != "" {
		if sec, ok := extract.LocateHTMLSection(body, ref.Anchor); ok {
			sectionHTML = sec.Content
			found = true
		}
	}

	return &Document{
		Title:        strings.ReplaceAll(ref.Title, "_", " "),
		Anchor:       ref.Anchor,
		SectionFound: found,
		HTML:         sectionHTML,
		Text:         extract.ExtractText(sectionHTML),
	}, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return string(body), nil
}

// contentHTML extracts the article body from a rendered page: the
// div.mw-parser-output wrapper, or #mw-content-text when the wrapper is
// absent from older skins.
func contentHTML(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %v", err)
	}

	target := findDiv(doc, func(n *html.Node) bool {
		return hasClass(n, "mw-parser-output")
	})
	if target == nil {
		target = findDiv(doc, func(n *html.Node) bool {
			return attrVal(n, "id") == "mw-content-text"
		})
	}
	if target == nil {
		return "", fmt.Errorf("no article body in page")
	}

	var buf bytes.Buffer
	for child := target.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("render body: %v", err)
		}
	}
	return buf.String(), nil
}

func findDiv(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Div && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findDiv(child, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrVal(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
