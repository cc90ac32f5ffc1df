// Package pipeline orchestrates the complete analysis of a talk-page
// URL: fetch the discussion, extract policy references, and optionally
// attach generative commentary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/policyref/policyref/internal/extract"
	"github.com/policyref/policyref/internal/knowledge"
	"github.com/policyref/policyref/internal/llm"
	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/wiki"
)

// Fetcher retrieves one discussion section
type Fetcher interface {
	FetchSection(ctx context.Context, rawURL string) (*wiki.Document, error)
}

// Pipeline orchestrates the complete analysis process
type Pipeline struct {
	fetcher   Fetcher
	fallback  Fetcher // Used when the primary fetcher reports the page unavailable
	extractor *extract.Extractor
	provider  llm.Provider // nil when the generative path is disabled
	config    *model.Config
}

// NewPipeline creates a pipeline with the given configuration and an
// explicitly injected LLM provider (nil disables commentary).
func NewPipeline(cfg *model.Config, provider llm.Provider) *Pipeline {
	client := wiki.NewClient(cfg)
	scraper := wiki.NewScraper(cfg)

	return &Pipeline{
		fetcher:   client,
		fallback:  scraperFetcher{scraper},
		extractor: extract.NewExtractor(knowledge.New(), extract.WindowFromString(cfg.Output.ContextWindow)),
		provider:  provider,
		config:    cfg,
	}
}

// scraperFetcher adapts the HTML scraper to the Fetcher interface
type scraperFetcher struct {
	scraper *wiki.Scraper
}

func (s scraperFetcher) FetchSection(ctx context.Context, rawURL string) (*wiki.Document, error) {
	return s.scraper.ScrapeSection(ctx, rawURL)
}

// AnalyzeURL analyzes a single talk-page URL. The action API is tried
// first; scraping the rendered page is the fallback. LLM commentary is
// best-effort and never fails the analysis.
func (p *Pipeline) AnalyzeURL(ctx context.Context, url string) (*model.Analysis, error) {
	doc, err := p.fetcher.FetchSection(ctx, url)
	if err != nil {
		if p.fallback == nil || !errors.Is(err, wiki.ErrUnavailable) {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		doc, err = p.fallback.FetchSection(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}

	result := p.extractor.Extract(extract.Input{
		HTML: doc.HTML,
		Text: doc.Text,
	})

	analysis := &model.Analysis{
		Title:        doc.Title,
		SourceURL:    url,
		Anchor:       doc.Anchor,
		SectionFound: doc.SectionFound,
		FetchedAt:    time.Now().UTC(),
		Policies:     result.Policies,
		Guidelines:   result.Guidelines,
		Essays:       result.Essays,
		SectionHTML:  result.SectionHTML,
	}

	// Commentary runs after extraction and never alters it
	if p.provider != nil {
		commentary, err := p.provider.Analyze(ctx, llm.Request{Text: doc.Text})
		if err != nil {
			if p.config.Output.Verbose {
				fmt.Fprintf(os.Stderr, "Warning: LLM commentary failed: %v\n", err)
			}
		} else if commentary != nil {
			analysis.LLM = &model.LLMCommentary{
				Enabled:    true,
				Provider:   p.provider.Name(),
				Model:      commentary.Model,
				Policies:   commentary.Policies,
				Guidelines: commentary.Guidelines,
				Essays:     commentary.Essays,
			}
		}
	}

	return analysis, nil
}
