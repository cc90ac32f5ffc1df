// Package llm provides optional generative commentary on talk-page
// discussions. The deterministic extraction path never depends on it;
// a provider failure degrades to extraction-only output.
package llm

import (
	"context"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze generates per-category commentary for a discussion
	Analyze(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the discussion text to analyze
type Request struct {
	// Text is the plain discussion text
	Text string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits each category response
	MaxTokens int
}

// Response contains free-text commentary, one block per category
type Response struct {
	Policies   string
	Guidelines string
	Essays     string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks total token consumption across the calls
	TokensUsed int
}
