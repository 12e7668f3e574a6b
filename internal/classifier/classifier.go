// Package classifier turns an inbound item plus its assembled context into a
// validated classification. The inference provider is called with bounded
// retries; on exhaustion or invalid output the deterministic rule-based
// fallback takes over, so classification itself never fails an instance.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/inference"
	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/pkg/formatting"
)

// Classification is the validated result attached to a workflow instance.
type Classification struct {
	Category       string  `json:"category"`
	Reasoning      string  `json:"reasoning"`
	PriorityScore  int     `json:"priority_score"`
	Confidence     float64 `json:"confidence"`
	ResponseNeeded bool    `json:"response_needed"`
	Language       string  `json:"language"`
	Tone           string  `json:"tone"`
	DraftText      *string `json:"draft_text,omitempty"`

	// Fallback marks results produced by the rule-based path.
	Fallback bool `json:"fallback"`
}

// Config holds the classification taxonomy and retry policy.
type Config struct {
	// Categories is the user's taxonomy.
	Categories []string `toml:"categories"`

	// FallbackCategory is assigned by the rule-based path. Must be a
	// taxonomy member.
	FallbackCategory string `toml:"fallback_category"`

	// MaxAttempts bounds inference calls per classification.
	MaxAttempts int `toml:"max_attempts"`

	// BackoffBase is the initial retry backoff.
	BackoffBase string `toml:"backoff_base"`

	// MaxBackoff caps the retry backoff.
	MaxBackoff string `toml:"max_backoff"`
}

// BackoffBaseDuration returns BackoffBase as a time.Duration.
func (c *Config) BackoffBaseDuration() time.Duration {
	d, _ := time.ParseDuration(c.BackoffBase)
	return d
}

// MaxBackoffDuration returns MaxBackoff as a time.Duration.
func (c *Config) MaxBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxBackoff)
	return d
}

// LoadDefaults fills unset fields.
func (c *Config) LoadDefaults() {
	if len(c.Categories) == 0 {
		c.Categories = []string{"work", "personal", "finance", "newsletter", "other"}
	}
	if c.FallbackCategory == "" {
		c.FallbackCategory = "other"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase == "" {
		c.BackoffBase = "2s"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "30s"
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Categories != nil {
		c.Categories = overlay.Categories
	}
	if overlay.FallbackCategory != "" {
		c.FallbackCategory = overlay.FallbackCategory
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.BackoffBase != "" {
		c.BackoffBase = overlay.BackoffBase
	}
	if overlay.MaxBackoff != "" {
		c.MaxBackoff = overlay.MaxBackoff
	}
}

// Validate checks taxonomy consistency.
func (c *Config) Validate() error {
	if !contains(c.Categories, c.FallbackCategory) {
		return fmt.Errorf("fallback_category %q is not in the taxonomy", c.FallbackCategory)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive: %d", c.MaxAttempts)
	}
	if _, err := time.ParseDuration(c.BackoffBase); err != nil {
		return fmt.Errorf("invalid backoff_base: %w", err)
	}
	if _, err := time.ParseDuration(c.MaxBackoff); err != nil {
		return fmt.Errorf("invalid max_backoff: %w", err)
	}
	return nil
}

// Classifier composes prompts and validates model output.
type Classifier struct {
	provider inference.Provider
	logger   *slog.Logger
	cfg      Config
}

// New creates a Classifier. Zero config fields fall back to defaults.
func New(provider inference.Provider, logger *slog.Logger, cfg Config) *Classifier {
	cfg.LoadDefaults()
	return &Classifier{
		provider: provider,
		logger:   logger.With("system", "classifier"),
		cfg:      cfg,
	}
}

// Classify produces a classification for the item. priorityScore is computed
// upstream and carried through onto the result. The returned classification
// is always valid against the taxonomy; it never returns an error for
// inference failures, only the fallback result.
func (c *Classifier) Classify(ctx context.Context, item mailbox.Item, bundle *assembler.Bundle, priorityScore int) *Classification {
	result, err := c.complete(ctx, item, bundle)
	if err != nil {
		c.logger.WarnContext(ctx, "inference exhausted, using fallback",
			"item_id", item.ItemID, "error", err)
		return c.fallback(item, priorityScore)
	}

	cls, err := c.parse(result.Content)
	if err != nil {
		c.logger.WarnContext(ctx, "invalid model output, using fallback",
			"item_id", item.ItemID, "error", err)
		return c.fallback(item, priorityScore)
	}

	cls.PriorityScore = priorityScore

	c.logger.InfoContext(ctx, "item classified",
		"item_id", item.ItemID,
		"category", cls.Category,
		"confidence", cls.Confidence,
		"model", result.Model,
	)
	return cls
}

// complete calls the provider, retrying only transient and rate-limit
// failures with exponential backoff, bounded by MaxAttempts.
func (c *Classifier) complete(ctx context.Context, item mailbox.Item, bundle *assembler.Bundle) (*inference.Result, error) {
	prompt := BuildPrompt(item, bundle, c.cfg.Categories)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.BackoffBaseDuration()
	policy.MaxInterval = c.cfg.MaxBackoffDuration()

	var result *inference.Result
	operation := func() error {
		r, err := c.provider.Complete(ctx, inference.Request{
			System:     systemPrompt,
			Prompt:     prompt,
			JSONOutput: true,
		})
		if err != nil {
			if inference.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}

	retries := uint64(c.cfg.MaxAttempts - 1)
	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), retries))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rawClassification is the wire shape expected from the model.
type rawClassification struct {
	Category       string  `json:"category"`
	Reasoning      string  `json:"reasoning"`
	Confidence     float64 `json:"confidence"`
	ResponseNeeded bool    `json:"response_needed"`
	Language       string  `json:"language"`
	Tone           string  `json:"tone"`
	DraftText      *string `json:"draft_text"`
}

// parse validates model output against the schema. Any violation is
// reported as an error so the caller falls back.
func (c *Classifier) parse(content string) (*Classification, error) {
	raw, err := formatting.Parse[rawClassification](content)
	if err != nil {
		// Model output occasionally carries comments or trailing commas
		// that a plain unmarshal rejects.
		extracted := formatting.ExtractJSON(content)
		if extracted == "" {
			return nil, err
		}
		if jsonErr := json.Unmarshal([]byte(extracted), &raw); jsonErr != nil {
			return nil, jsonErr
		}
	}

	if !contains(c.cfg.Categories, raw.Category) {
		return nil, fmt.Errorf("category %q is not in the taxonomy", raw.Category)
	}
	if len(raw.Reasoning) > maxReasoningLength {
		return nil, fmt.Errorf("reasoning exceeds %d characters", maxReasoningLength)
	}
	if raw.Confidence < 0 || raw.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %g", raw.Confidence)
	}
	if raw.Language == "" || raw.Tone == "" {
		return nil, fmt.Errorf("language and tone are required")
	}

	return &Classification{
		Category:       raw.Category,
		Reasoning:      raw.Reasoning,
		Confidence:     raw.Confidence,
		ResponseNeeded: raw.ResponseNeeded,
		Language:       raw.Language,
		Tone:           raw.Tone,
		DraftText:      raw.DraftText,
	}, nil
}

const maxReasoningLength = 300

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
