package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/policyref/policyref/internal/extract"
	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/worker"
)

// Client talks to the MediaWiki action API
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	limiter     *worker.Limiter
	renderCache *gocache.Cache // Memoizes display renders; nil when disabled
	apiBase     string         // Overrides the action API endpoint in tests
}

func (c *Client) endpoint(ref PageRef) string {
	if c.apiBase != "" {
		return c.apiBase
	}
	return ref.APIEndpoint()
}

// NewClient creates a client from configuration. Timeouts and the
// per-domain rate limit apply to every request.
func NewClient(cfg *model.Config) *Client {
	var renderCache *gocache.Cache
	if cfg.Cache.Enabled {
		renderCache = gocache.New(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		limiter:    worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
		renderCache: renderCache,
	}
}

// API wire types, formatversion=2. Section levels arrive as strings.
type parseResponse struct {
	Parse *struct {
		Title    string        `json:"title"`
		Wikitext string        `json:"wikitext"`
		Text     string        `json:"text"`
		Sections []sectionMeta `json:"sections"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type sectionMeta struct {
	Line   string `json:"line"`   // Heading text
	Level  string `json:"level"`  // Delimiter count as a string
	Anchor string `json:"anchor"` // Section anchor
}

// FetchSection fetches the discussion section referenced by a talk-page
// URL via the action API: full-page wikitext plus section metadata, then
// the target section sliced out. A missing section falls back to the
// whole page (SectionFound=false), never an error.
func (c *Client) FetchSection(ctx context.Context, rawURL string) (*Document, error) {
	ref, err := ParsePageURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := url.Values{
		"action":        {"parse"},
		"page":          {ref.Title},
		"prop":          {"wikitext|sections"},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	var resp parseResponse
	if err := c.apiGet(ctx, ref, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: API error %s: %s", ErrUnavailable, resp.Error.Code, resp.Error.Info)
	}
	if resp.Parse == nil {
		return nil, fmt.Errorf("%w: no parse data in API response", ErrUnavailable)
	}

	full := resp.Parse.Wikitext
	sectionWikitext := full
	found := false

	if ref.Anchor != "" {
		if sliced, ok := sliceSection(full, ref.Anchor, resp.Parse.Sections); ok {
			sectionWikitext = sliced
			found = true
		}
	}

	htmlOut, err := c.RenderWikitext(ctx, ref, sectionWikitext)
	if err != nil {
		// Display rendering is best-effort; analysis continues on text
		htmlOut = "<pre>" + htmlEscape(sectionWikitext) + "</pre>"
	}

	return &Document{
		Title:        resp.Parse.Title,
		Anchor:       ref.Anchor,
		SectionFound: found,
		Wikitext:     sectionWikitext,
		HTML:         htmlOut,
		Text:         extract.StripWikitext(sectionWikitext),
	}, nil
}

// sliceSection locates the anchored section, preferring the API section
// metadata (anchor -> heading line) over raw anchor matching.
func sliceSection(wikitext, anchor string, sections []sectionMeta) (string, bool) {
	for _, meta := range sections {
		if !anchorsEqual(meta.Anchor, anchor) {
			continue
		}
		if sec, ok := extract.LocateWikitextSection(wikitext, meta.Line); ok {
			return strings.TrimSpace(sec.Content), true
		}
	}

	// No metadata match; try the anchor against heading lines directly
	if sec, ok := extract.LocateWikitextSection(wikitext, anchor); ok {
		return strings.TrimSpace(sec.Content), true
	}

	return "", false
}

func anchorsEqual(a, b string) bool {
	norm := func(s string) string { return strings.ReplaceAll(s, "_", " ") }
	return a == b || norm(a) == norm(b)
}

// RenderWikitext converts a wikitext fragment to display HTML via the
// API. Renders are memoized: the same section rendered twice within the
// TTL reuses the response instead of calling the parse endpoint again.
func (c *Client) RenderWikitext(ctx context.Context, ref PageRef, wikitext string) (string, error) {
	key := renderKey(wikitext)
	if c.renderCache != nil {
		if cached, ok := c.renderCache.Get(key); ok {
			return cached.(string), nil
		}
	}

	form := url.Values{
		"action":        {"parse"},
		"text":          {wikitext},
		"title":         {ref.Title},
		"prop":          {"text"},
		"format":        {"json"},
		"formatversion": {"2"},
		"contentmodel":  {"wikitext"},
	}

	if err := c.limiter.Wait(ctx, c.endpoint(ref)); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(ref), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render wikitext: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render wikitext: status %d", httpResp.StatusCode)
	}

	var resp parseResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, c.maxBytes)).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	if resp.Parse == nil || resp.Parse.Text == "" {
		return "", fmt.Errorf("no rendered text in API response")
	}

	if c.renderCache != nil {
		c.renderCache.Set(key, resp.Parse.Text, gocache.DefaultExpiration)
	}
	return resp.Parse.Text, nil
}

func (c *Client) apiGet(ctx context.Context, ref PageRef, params url.Values, out *parseResponse) error {
	if err := c.limiter.Wait(ctx, c.endpoint(ref)); err != nil {
		return fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(ref)+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func renderKey(wikitext string) string {
	sum := sha256.Sum256([]byte(wikitext))
	return "policyref:render:" + hex.EncodeToString(sum[:])
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}
