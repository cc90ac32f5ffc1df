package llm

import (
	"fmt"
	"strings"

	"github.com/policyref/policyref/internal/model"
)

// NewProvider creates an LLM provider based on configuration. An empty
// provider name disables the generative path and returns (nil, nil).
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
