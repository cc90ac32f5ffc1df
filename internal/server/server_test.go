package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/wiki"
)

// stubAnalyzer implements Analyzer
type stubAnalyzer struct {
	analysis *model.Analysis
	err      error
}

func (s *stubAnalyzer) AnalyzeURL(ctx context.Context, url string) (*model.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func testAnalysis() *model.Analysis {
	return &model.Analysis{
		Title:        "Talk:Example",
		SourceURL:    "https://en.wikipedia.org/wiki/Talk:Example",
		SectionFound: true,
		SectionHTML:  `<p>See <span id="highlight-0" class="policy-mention">WP:NPOV</span>.</p>`,
		Policies: []model.Mention{{
			Category: model.CategoryPolicy,
			Name:     "Neutral point of view",
			Shortcut: "WP:NPOV",
			URL:      "https://en.wikipedia.org/wiki/Wikipedia:Neutral_point_of_view",
			Contexts: []model.Context{{Raw: "See WP:NPOV."}},
		}},
	}
}

func newTestServer(analyzer Analyzer) *Server {
	return NewServer(analyzer, model.DefaultConfig())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestIndexPage(t *testing.T) {
	w := doRequest(t, newTestServer(&stubAnalyzer{}), http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Wikipedia Policy Reference Analyzer") {
		t.Error("Expected the index page title")
	}
}

func TestFavicon(t *testing.T) {
	w := doRequest(t, newTestServer(&stubAnalyzer{}), http.MethodGet, "/favicon.ico", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
}

func TestAnalyze_Success(t *testing.T) {
	s := newTestServer(&stubAnalyzer{analysis: testAnalysis()})
	w := doRequest(t, s, http.MethodPost, "/analyze", `{"url":"https://en.wikipedia.org/wiki/Talk:Example"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		DiscussionHTML string `json:"discussion_html"`
		Policies       string `json:"policies"`
		Guidelines     string `json:"guidelines"`
		Essays         string `json:"essays"`
		SectionFound   bool   `json:"section_found"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if !strings.Contains(resp.DiscussionHTML, "highlight-0") {
		t.Error("Expected annotated discussion HTML")
	}
	if !strings.Contains(resp.Policies, "WP:NPOV") {
		t.Errorf("Expected formatted policy list, got %q", resp.Policies)
	}
	if resp.Guidelines != emptyCategoryHTML || resp.Essays != emptyCategoryHTML {
		t.Error("Empty categories should carry the explicit message")
	}
	if !resp.SectionFound {
		t.Error("Expected section_found=true")
	}
}

func TestAnalyze_LLMCommentaryIncluded(t *testing.T) {
	analysis := testAnalysis()
	analysis.LLM = &model.LLMCommentary{
		Enabled:  true,
		Provider: "openai",
		Model:    "gpt-4",
		Policies: "NPOV is debated.",
	}
	s := newTestServer(&stubAnalyzer{analysis: analysis})
	w := doRequest(t, s, http.MethodPost, "/analyze", `{"url":"https://en.wikipedia.org/wiki/Talk:Example"}`)

	var resp struct {
		LLM *struct {
			Provider string `json:"provider"`
			Policies string `json:"policies"`
		} `json:"llm"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp.LLM == nil || resp.LLM.Provider != "openai" || resp.LLM.Policies == "" {
		t.Errorf("Expected LLM commentary in response, got %+v", resp.LLM)
	}
}

func TestAnalyze_MissingURL(t *testing.T) {
	s := newTestServer(&stubAnalyzer{analysis: testAnalysis()})

	for _, body := range []string{"", `{}`, `{"url":""}`, `not json`} {
		w := doRequest(t, s, http.MethodPost, "/analyze", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for body %q, got %d", body, w.Code)
		}
	}
}

func TestAnalyze_PageUnavailable(t *testing.T) {
	s := newTestServer(&stubAnalyzer{err: fmt.Errorf("%w: status 404", wiki.ErrUnavailable)})
	w := doRequest(t, s, http.MethodPost, "/analyze", `{"url":"https://en.wikipedia.org/wiki/Talk:Missing"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to scrape Wikipedia page") {
		t.Errorf("Expected scrape failure message, got %s", w.Body.String())
	}
}

func TestAnalyze_InternalError(t *testing.T) {
	s := newTestServer(&stubAnalyzer{err: errors.New("boom")})
	w := doRequest(t, s, http.MethodPost, "/analyze", `{"url":"https://en.wikipedia.org/wiki/Talk:Example"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Server error") {
		t.Errorf("Expected generic server error, got %s", w.Body.String())
	}
}
