package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/policyref/policyref/internal/extract"
	"github.com/policyref/policyref/internal/knowledge"
	"github.com/policyref/policyref/internal/llm"
	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/wiki"
)

// fakeFetcher implements Fetcher
type fakeFetcher struct {
	doc *wiki.Document
	err error
}

func (f *fakeFetcher) FetchSection(ctx context.Context, rawURL string) (*wiki.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

// fakeProvider implements llm.Provider
type fakeProvider struct {
	err error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeProvider) Analyze(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{
		Model:    "fake-model",
		Policies: "commentary on " + req.Text[:10],
	}, nil
}

func testPipeline(fetcher, fallback Fetcher, provider llm.Provider) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		fallback:  fallback,
		extractor: extract.NewExtractor(knowledge.New(), extract.WindowMedium),
		provider:  provider,
		config:    model.DefaultConfig(),
	}
}

func testDoc() *wiki.Document {
	return &wiki.Document{
		Title:        "Talk:Example",
		Anchor:       "Sourcing_dispute",
		SectionFound: true,
		HTML:         `<p>This fails <a href="/wiki/Wikipedia:Neutral_point_of_view">WP:NPOV</a> badly.</p>`,
		Text:         "This fails WP:NPOV badly.",
	}
}

func TestAnalyzeURL_Basic(t *testing.T) {
	p := testPipeline(&fakeFetcher{doc: testDoc()}, nil, nil)

	analysis, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example#Sourcing_dispute")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if analysis.Title != "Talk:Example" {
		t.Errorf("Unexpected title: %q", analysis.Title)
	}
	if !analysis.SectionFound {
		t.Error("Expected SectionFound=true")
	}
	if len(analysis.Policies) != 1 {
		t.Fatalf("Expected 1 policy mention, got %d", len(analysis.Policies))
	}
	if analysis.Policies[0].Name != "Neutral point of view" {
		t.Errorf("Unexpected policy: %q", analysis.Policies[0].Name)
	}
	if analysis.FetchedAt.IsZero() {
		t.Error("Expected FetchedAt to be set")
	}
	if analysis.LLM != nil {
		t.Error("Expected no LLM commentary without a provider")
	}
}

func TestAnalyzeURL_FallsBackOnUnavailable(t *testing.T) {
	primary := &fakeFetcher{err: fmt.Errorf("%w: API down", wiki.ErrUnavailable)}
	fallback := &fakeFetcher{doc: testDoc()}

	p := testPipeline(primary, fallback, nil)

	analysis, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example")
	if err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if len(analysis.Policies) != 1 {
		t.Errorf("Expected extraction from the fallback document")
	}
}

func TestAnalyzeURL_BothPathsFail(t *testing.T) {
	primary := &fakeFetcher{err: fmt.Errorf("%w: API down", wiki.ErrUnavailable)}
	fallback := &fakeFetcher{err: fmt.Errorf("%w: blocked", wiki.ErrUnavailable)}

	p := testPipeline(primary, fallback, nil)

	if _, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example"); err == nil {
		t.Error("Expected error when both fetch paths fail")
	}
}

func TestAnalyzeURL_NonRetriableFetchError(t *testing.T) {
	primary := &fakeFetcher{err: errors.New("context canceled")}
	fallback := &fakeFetcher{doc: testDoc()}

	p := testPipeline(primary, fallback, nil)

	if _, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example"); err == nil {
		t.Error("Errors other than page unavailability should not trigger scraping")
	}
}

func TestAnalyzeURL_LLMCommentary(t *testing.T) {
	p := testPipeline(&fakeFetcher{doc: testDoc()}, nil, &fakeProvider{})

	analysis, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if analysis.LLM == nil {
		t.Fatal("Expected LLM commentary")
	}
	if !analysis.LLM.Enabled || analysis.LLM.Provider != "fake" {
		t.Errorf("Unexpected commentary metadata: %+v", analysis.LLM)
	}
	if analysis.LLM.Policies == "" {
		t.Error("Expected policy commentary text")
	}
}

func TestAnalyzeURL_LLMFailureIsNotFatal(t *testing.T) {
	p := testPipeline(&fakeFetcher{doc: testDoc()}, nil, &fakeProvider{err: errors.New("quota exceeded")})

	analysis, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example")
	if err != nil {
		t.Fatalf("LLM failure must not fail the analysis, got %v", err)
	}
	if analysis.LLM != nil {
		t.Error("Expected no commentary after provider failure")
	}
	if len(analysis.Policies) != 1 {
		t.Error("Extraction results must survive a provider failure")
	}
}

func TestAnalyzeURL_LLMFailureWarnsOnStderr(t *testing.T) {
	p := testPipeline(&fakeFetcher{doc: testDoc()}, nil, &fakeProvider{err: errors.New("quota exceeded")})
	p.config.Output.Verbose = true

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	oldStderr := os.Stderr
	os.Stderr = writeEnd
	defer func() { os.Stderr = oldStderr }()

	if _, err := p.AnalyzeURL(context.Background(), "https://en.wikipedia.org/wiki/Talk:Example"); err != nil {
		t.Fatalf("LLM failure must not fail the analysis, got %v", err)
	}

	writeEnd.Close()
	captured, err := io.ReadAll(readEnd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(captured), "LLM commentary failed") {
		t.Errorf("Expected warning on stderr, got %q", captured)
	}
}
