// Package inference abstracts the model provider behind a small interface:
// prompt in, text out, plus embeddings for semantic retrieval. Errors are
// classified so callers can distinguish retryable failures (rate limits,
// timeouts) from permanent ones.
package inference

import (
	"context"
	"fmt"
	"time"
)

// Request defines a completion request.
type Request struct {
	// System is the system prompt establishing the task.
	System string

	// Prompt is the user-turn content.
	Prompt string

	// Temperature controls randomness. nil uses the configured default.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the configured default.
	MaxTokens int

	// JSONOutput constrains the response to a single JSON object.
	JSONOutput bool
}

// Result contains the completion output.
type Result struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is implemented by model backends.
type Provider interface {
	// Complete sends a completion request and returns the result.
	// Failures are wrapped with the error classifiers in this package.
	Complete(ctx context.Context, req Request) (*Result, error)

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds model provider connection parameters.
type Config struct {
	BaseURL             string  `toml:"base_url"`
	APIKey              string  `toml:"api_key"`
	Model               string  `toml:"model"`
	EmbeddingModel      string  `toml:"embedding_model"`
	EmbeddingDimensions int     `toml:"embedding_dimensions"`
	Timeout             string  `toml:"timeout"`
	Temperature         float64 `toml:"temperature"`
	MaxTokens           int     `toml:"max_tokens"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// LoadDefaults fills unset fields with provider defaults.
func (c *Config) LoadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.EmbeddingDimensions == 0 {
		c.EmbeddingDimensions = 1536
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.EmbeddingDimensions != 0 {
		c.EmbeddingDimensions = overlay.EmbeddingDimensions
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}

// Validate checks the config for internally inconsistent values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.EmbeddingDimensions < 1 {
		return fmt.Errorf("invalid embedding_dimensions: %d", c.EmbeddingDimensions)
	}
	return nil
}
