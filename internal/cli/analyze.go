package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyref/policyref/internal/llm"
	"github.com/policyref/policyref/internal/model"
	"github.com/policyref/policyref/internal/pipeline"
)

var (
	outJSON     string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	window      string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single talk-page discussion",
	Long: `Analyze fetches a Wikipedia talk-page discussion and reports every
policy, guideline, and essay it references, with the sentences around
each mention.

Example:
  policyref analyze "https://en.wikipedia.org/wiki/Talk:Climate_change#Recent_edits"
  policyref analyze "https://en.wikipedia.org/wiki/Talk:Laksa" --window large --json out.json
  policyref analyze "https://en.wikipedia.org/wiki/Talk:Laksa" --llm --llm-model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write JSON analysis to this path (default: stdout)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render memoization")
	analyzeCmd.Flags().StringVar(&window, "window", "medium", "context window: minimal, medium or large")

	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM commentary")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4", "LLM model name")
}

// buildConfig assembles the effective configuration from defaults and
// the shared flags.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.ContextWindow = window

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg
}

// newPipeline builds the analysis pipeline, creating the LLM provider
// from configuration when the generative path is enabled.
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}
	return pipeline.NewPipeline(cfg, provider), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()
	if llmEnabled && cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", url)
	}

	analysis, err := p.AnalyzeURL(ctx, url)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Found %d policies, %d guidelines, %d essays\n",
			len(analysis.Policies), len(analysis.Guidelines), len(analysis.Essays))
		if !analysis.SectionFound && analysis.Anchor != "" {
			fmt.Fprintf(os.Stderr, "Section %q not found; analyzed the whole page\n", analysis.Anchor)
		}
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	if outJSON == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outJSON, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outJSON, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", outJSON)
	}
	return nil
}
