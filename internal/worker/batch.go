package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/policyref/policyref/internal/model"
)

// Analyzer analyzes one talk-page URL
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*model.Analysis, error)
}

// AnalyzeJob analyzes a single URL
type AnalyzeJob struct {
	URL      string
	Analyzer Analyzer
}

// Execute runs the analysis for the job's URL.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	analysis, err := j.Analyzer.AnalyzeURL(ctx, j.URL)
	return &AnalyzeResult{
		URL:      j.URL,
		Analysis: analysis,
		Error:    err,
	}
}

// AnalyzeResult is the outcome of one URL analysis
type AnalyzeResult struct {
	URL      string
	Analysis *model.Analysis
	Error    error
}

// GetError returns the analysis error, if any.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple talk-page URLs concurrently.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessURLs analyzes the URLs concurrently and returns one result per
// URL. Order follows completion, not submission.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*AnalyzeResult {
	if len(urls) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submission runs in its own goroutine; the channel buffers are
	// smaller than typical batches, so results must drain in parallel.
	go func() {
		for _, url := range urls {
			pool.Submit(&AnalyzeJob{
				URL:      url,
				Analyzer: b.analyzer,
			})
		}
		pool.Close()
	}()

	analyzeResults := make([]*AnalyzeResult, 0, len(urls))
	for result := range pool.Results() {
		analyzeResults = append(analyzeResults, result.(*AnalyzeResult))
	}

	return analyzeResults
}

// ProcessFile reads URLs from a file (one per line) and analyzes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file, skipping blank lines and
// comments and dropping duplicates.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
