// Package priority computes a deterministic 0–100 urgency score for an
// inbound message from its sender and content. The score decides whether the
// approval notification bypasses batching on the delivery side; it never
// changes what gets classified, only how fast a human sees it.
package priority

import (
	"fmt"
	"strings"
)

// Bonus values awarded per matched signal. The sum is clamped to 100.
const (
	domainBonus  = 50
	keywordBonus = 30
	senderBonus  = 40

	maxScore = 100
)

// urgencyKeywords are matched case-insensitively against subject and body
// preview. The set spans the languages the fallback classifier supports.
var urgencyKeywords = []string{
	// English
	"urgent", "asap", "deadline", "immediately", "important",
	// German
	"dringend", "sofort", "frist", "wichtig", "eilig",
	// French
	"urgent", "immédiatement", "délai", "important",
	// Spanish
	"urgente", "inmediatamente", "plazo", "importante",
}

// Config holds the user-configured priority rules.
type Config struct {
	// Domains are sender domains that always matter (e.g. an employer's).
	Domains []string `toml:"domains"`

	// Senders are full addresses with a user-configured priority rule.
	Senders []string `toml:"senders"`

	// Threshold is the minimum score considered priority.
	Threshold int `toml:"threshold"`
}

// LoadDefaults fills unset fields.
func (c *Config) LoadDefaults() {
	if c.Threshold == 0 {
		c.Threshold = 70
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Domains != nil {
		c.Domains = overlay.Domains
	}
	if overlay.Senders != nil {
		c.Senders = overlay.Senders
	}
	if overlay.Threshold != 0 {
		c.Threshold = overlay.Threshold
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Threshold < 1 || c.Threshold > maxScore {
		return fmt.Errorf("threshold must be in [1, %d]: %d", maxScore, c.Threshold)
	}
	return nil
}

// Result is the outcome of scoring a message.
type Result struct {
	Score      int  `json:"score"`
	IsPriority bool `json:"is_priority"`
}

// Scorer computes urgency scores against a fixed rule configuration.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer from the given rules.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the urgency of a message from its sender address, subject,
// and body preview. Pure and deterministic.
func (s *Scorer) Score(sender, subject, preview string) Result {
	score := 0

	if matchesDomain(sender, s.cfg.Domains) {
		score += domainBonus
	}
	if containsUrgencyKeyword(subject) || containsUrgencyKeyword(preview) {
		score += keywordBonus
	}
	if matchesSender(sender, s.cfg.Senders) {
		score += senderBonus
	}

	if score > maxScore {
		score = maxScore
	}

	return Result{
		Score:      score,
		IsPriority: score >= s.cfg.Threshold,
	}
}

func matchesDomain(sender string, domains []string) bool {
	at := strings.LastIndex(sender, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(sender[at+1:])

	for _, d := range domains {
		if strings.EqualFold(strings.TrimPrefix(d, "@"), domain) {
			return true
		}
	}
	return false
}

func matchesSender(sender string, senders []string) bool {
	for _, s := range senders {
		if strings.EqualFold(s, sender) {
			return true
		}
	}
	return false
}

func containsUrgencyKeyword(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range urgencyKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
