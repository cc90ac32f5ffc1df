package model

import "time"

// Config holds the complete application configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	LLM         LLMConfig         `yaml:"llm"`
	Server      ServerConfig      `yaml:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls outbound requests to Wikipedia
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CacheConfig controls memoization of display renders
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LLMConfig controls the optional generative analysis path
type LLMConfig struct {
	Provider       string `yaml:"provider"` // "openai" or "" (disabled)
	Model          string `yaml:"model"`
	APIKey         string `yaml:"-"` // Never serialized; from env
	BaseURL        string `yaml:"base_url"`
	Timeout        int    `yaml:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens"`
	MaxPromptChars int    `yaml:"max_prompt_chars"` // Discussion text truncation
}

// ServerConfig controls the HTTP serving mode
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Per-domain politeness
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose"`
	ContextWindow string `yaml:"context_window"` // "minimal", "medium" or "large"
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "policyref/0.1 (+https://github.com/policyref/policyref)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:       "", // Disabled by default
			Model:          "gpt-4",
			Timeout:        30,
			MaxTokens:      1500,
			MaxPromptChars: 10000,
		},
		Server: ServerConfig{
			Addr:           ":5001",
			RequestTimeout: 60 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Output: OutputConfig{
			ContextWindow: "medium",
		},
	}
}
