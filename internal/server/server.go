// Package server exposes the analyzer over HTTP. One page, one JSON
// endpoint, mirroring the layout a reviewer pastes a talk-page URL
// into.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/wiki"
)

// Analyzer analyzes one talk-page URL
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*model.Analysis, error)
}

// Server serves the analysis UI and API
type Server struct {
	analyzer Analyzer
	config   *model.Config
	srv      *http.Server
}

// NewServer creates a server around the given analyzer.
func NewServer(analyzer Analyzer, cfg *model.Config) *Server {
	s := &Server{
		analyzer: analyzer,
		config:   cfg,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleIndex)
	router.GET("/favicon.ico", s.handleFavicon)
	router.POST("/analyze", s.handleAnalyze)

	s.srv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	fmt.Printf("HTTP server listening on %s\n", s.config.Server.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

func (s *Server) handleFavicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type analyzeResponse struct {
	DiscussionHTML string         `json:"discussion_html"`
	Policies       string         `json:"policies"`
	Guidelines     string         `json:"guidelines"`
	Essays         string         `json:"essays"`
	SectionFound   bool           `json:"section_found"`
	LLM            *llmCommentary `json:"llm,omitempty"`
}

type llmCommentary struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Policies   string `json:"policies"`
	Guidelines string `json:"guidelines"`
	Essays     string `json:"essays"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.RequestTimeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeURL(ctx, req.URL)
	if err != nil {
		if errors.Is(err, wiki.ErrUnavailable) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to scrape Wikipedia page. Please check the URL and try again.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Server error: %v", err)})
		return
	}

	resp := analyzeResponse{
		DiscussionHTML: analysis.SectionHTML,
		Policies:       FormatMentions(analysis.Policies, 0),
		Guidelines:     FormatMentions(analysis.Guidelines, len(analysis.Policies)),
		Essays:         FormatMentions(analysis.Essays, len(analysis.Policies)+len(analysis.Guidelines)),
		SectionFound:   analysis.SectionFound,
	}
	if analysis.LLM != nil && analysis.LLM.Enabled {
		resp.LLM = &llmCommentary{
			Provider:   analysis.LLM.Provider,
			Model:      analysis.LLM.Model,
			Policies:   analysis.LLM.Policies,
			Guidelines: analysis.LLM.Guidelines,
			Essays:     analysis.LLM.Essays,
		}
	}

	c.JSON(http.StatusOK, resp)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Wikipedia Policy Reference Analyzer</title>
<style>
body { font-family: sans-serif; max-width: 900px; margin: 2em auto; padding: 0 1em; }
input[type=url] { width: 70%; padding: 0.5em; }
button { padding: 0.5em 1em; }
.policy-mention { background: #fff3a0; }
.context-snippet { color: #555; margin: 0.2em 0 0.2em 1em; }
.mention-count { color: #888; font-size: 0.9em; }
#results div.column { margin-top: 1.5em; }
</style>
</head>
<body>
<h1>Wikipedia Policy Reference Analyzer</h1>
<p>Paste a talk-page discussion URL, e.g.
<code>https://en.wikipedia.org/wiki/Talk:Article#Section_name</code></p>
<form id="analyze-form">
<input type="url" id="url" placeholder="https://en.wikipedia.org/wiki/Talk:..." required>
<button type="submit">Analyze</button>
</form>
<div id="results">
<div class="column"><h2>Policies</h2><div id="policies"></div></div>
<div class="column"><h2>Guidelines</h2><div id="guidelines"></div></div>
<div class="column"><h2>Essays</h2><div id="essays"></div></div>
<div class="column"><h2>Discussion</h2><div id="discussion"></div></div>
</div>
<script>
document.getElementById('analyze-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const resp = await fetch('/analyze', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({url: document.getElementById('url').value})
  });
  const data = await resp.json();
  if (data.error) { alert(data.error); return; }
  document.getElementById('policies').innerHTML = data.policies;
  document.getElementById('guidelines').innerHTML = data.guidelines;
  document.getElementById('essays').innerHTML = data.essays;
  document.getElementById('discussion').innerHTML = data.discussion_html;
});
</script>
</body>
</html>
`
