package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/policyref/policyref/internal/model"
)

// chatClient is the slice of the OpenAI API the provider uses. Tests
// inject a fake; production wires *openai.Client.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider implements Provider for OpenAI chat models
type OpenAIProvider struct {
	client chatClient
	config model.LLMConfig
}

// NewOpenAIProvider creates an OpenAI provider from configuration.
func NewOpenAIProvider(config model.LLMConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is configured and reachable.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Analyze runs one chat completion per category and collects the
// commentary. A failure in any category fails the whole request;
// callers treat that as extraction-only output.
func (p *OpenAIProvider) Analyze(ctx context.Context, req Request) (*Response, error) {
	chatModel := req.Model
	if chatModel == "" {
		chatModel = p.config.Model
	}
	if chatModel == "" {
		chatModel = openai.GPT4
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	resp := &Response{Model: chatModel}

	for _, cat := range model.Categories() {
		prompt, err := BuildPrompt(cat, req.Text, p.config.MaxPromptChars)
		if err != nil {
			return nil, err
		}

		text, tokens, err := p.complete(ctx, timeout, chatModel, maxTokens, prompt)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", cat, err)
		}

		resp.TokensUsed += tokens
		switch cat {
		case model.CategoryPolicy:
			resp.Policies = text
		case model.CategoryGuideline:
			resp.Guidelines = text
		case model.CategoryEssay:
			resp.Essays = text
		}
	}

	return resp, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, timeout time.Duration, chatModel string, maxTokens int, prompt string) (string, int, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Focused, factual output
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", 0, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage.TotalTokens, nil
}
