package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyref/policyref/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple talk-page URLs from a file in parallel",
	Long: `Batch reads talk-page URLs from a file (one per line, # for
comments) and analyzes them concurrently, writing one JSON analysis per
URL into the output directory.

Example:
  policyref batch urls.txt
  policyref batch urls.txt --concurrency 8 --output-dir ./analyses
  policyref batch urls.txt --timeout 10m --llm`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./policyref-analyses", "output directory for analyses")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with the analyze command
	batchCmd.Flags().DurationVar(&timeout, "page-timeout", 30*time.Second, "timeout for individual page fetches")
	batchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render memoization")
	batchCmd.Flags().StringVar(&window, "window", "medium", "context window: minimal, medium or large")
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM commentary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	cfg.Concurrency.Workers = concurrency
	if llmEnabled && cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "Processing %s with %d workers\n", file, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	succeeded := 0
	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.URL, res.Error)
			continue
		}

		path := filepath.Join(outputDir, analysisFileName(res.URL))
		data, err := json.MarshalIndent(res.Analysis, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: encode: %v\n", res.URL, err)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: write: %v\n", res.URL, err)
			continue
		}

		succeeded++
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", res.URL, path)
		}
	}

	fmt.Fprintf(os.Stderr, "Done: %d/%d analyses written to %s\n", succeeded, len(results), outputDir)

	if succeeded == 0 && len(results) > 0 {
		return fmt.Errorf("all %d analyses failed", len(results))
	}
	return nil
}

// analysisFileName derives a stable filename from a talk-page URL.
func analysisFileName(rawURL string) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		name = strings.TrimPrefix(parsed.Path, "/wiki/")
		if parsed.Fragment != "" {
			name += "_" + parsed.Fragment
		}
	}

	replacer := strings.NewReplacer("/", "_", ":", "_", "#", "_", "?", "_", "&", "_", " ", "_")
	name = replacer.Replace(name)
	if name == "" {
		name = "analysis"
	}
	return name + ".json"
}
