package provider

import (
	"context"
	"fmt"
)

// Backend names accepted by Config.
const (
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
	BackendMock      = "mock"
)

// Config holds backend initialization parameters.
type Config struct {
	Backend        string  `json:"backend,omitempty"`
	Model          string  `json:"model,omitempty"`
	APIKey         string  `json:"api_key,omitempty"`
	BaseURL        string  `json:"base_url,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendAnthropic}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// New creates a Provider from configuration.
func New(ctx context.Context, cfg *Config) (Provider, error) {
	switch cfg.Backend {
	case "", BackendAnthropic:
		return NewAnthropic(cfg), nil
	case BackendGemini:
		return NewGemini(ctx, cfg)
	case BackendMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown provider backend: %s", cfg.Backend)
	}
}
