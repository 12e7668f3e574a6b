// Package assembler builds the ranked, budgeted bundle of prior messages
// shown to the classifier: the conversation thread, the correspondent's
// recent history, and semantically similar items scored by a fusion of
// cosine similarity and exponential recency decay.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/internal/messages"
	"github.com/kbristol/sift/internal/vector"
)

// Config holds assembly tuning parameters.
type Config struct {
	// MaxCorrespondent bounds the correspondent history list.
	MaxCorrespondent int `toml:"max_correspondent"`

	// SemanticK is the number of nearest neighbors requested.
	SemanticK int `toml:"semantic_k"`

	// HalfLifeDays controls recency decay in the fused score.
	HalfLifeDays float64 `toml:"half_life_days"`

	// SimilarityWeight is the cosine weight in the fused score; recency
	// gets the remainder.
	SimilarityWeight float64 `toml:"similarity_weight"`

	// BodyBudget truncates thread and semantic item bodies (characters).
	BodyBudget int `toml:"body_budget"`

	// CorrespondentBodyBudget truncates correspondent history bodies. It is
	// larger than BodyBudget since correspondent history is the primary
	// source of cross-thread continuity.
	CorrespondentBodyBudget int `toml:"correspondent_body_budget"`

	// StrictOwnerScope restricts correspondent and semantic retrieval to
	// the item's owner. Disable for best-effort recall across owners.
	StrictOwnerScope *bool `toml:"strict_owner_scope"`
}

// LoadDefaults fills unset fields.
func (c *Config) LoadDefaults() {
	if c.MaxCorrespondent == 0 {
		c.MaxCorrespondent = 50
	}
	if c.SemanticK == 0 {
		c.SemanticK = 10
	}
	if c.HalfLifeDays == 0 {
		c.HalfLifeDays = 14
	}
	if c.SimilarityWeight == 0 {
		c.SimilarityWeight = 0.7
	}
	if c.BodyBudget == 0 {
		c.BodyBudget = 500
	}
	if c.CorrespondentBodyBudget == 0 {
		c.CorrespondentBodyBudget = 800
	}
	if c.StrictOwnerScope == nil {
		strict := true
		c.StrictOwnerScope = &strict
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxCorrespondent != 0 {
		c.MaxCorrespondent = overlay.MaxCorrespondent
	}
	if overlay.SemanticK != 0 {
		c.SemanticK = overlay.SemanticK
	}
	if overlay.HalfLifeDays != 0 {
		c.HalfLifeDays = overlay.HalfLifeDays
	}
	if overlay.SimilarityWeight != 0 {
		c.SimilarityWeight = overlay.SimilarityWeight
	}
	if overlay.BodyBudget != 0 {
		c.BodyBudget = overlay.BodyBudget
	}
	if overlay.CorrespondentBodyBudget != 0 {
		c.CorrespondentBodyBudget = overlay.CorrespondentBodyBudget
	}
	if overlay.StrictOwnerScope != nil {
		c.StrictOwnerScope = overlay.StrictOwnerScope
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.SimilarityWeight < 0 || c.SimilarityWeight > 1 {
		return fmt.Errorf("similarity_weight must be in [0, 1]: %g", c.SimilarityWeight)
	}
	if c.HalfLifeDays <= 0 {
		return fmt.Errorf("half_life_days must be positive: %g", c.HalfLifeDays)
	}
	return nil
}

// Entry is one prior message included in a bundle.
type Entry struct {
	ItemID  string    `json:"item_id"`
	Sender  string    `json:"sender"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`

	// Score is the fused relevance score; only set on semantic entries.
	Score float64 `json:"score,omitempty"`
}

// Bundle is the assembled context for one inbound item. Entries may overlap
// across lists; consumers deduplicate by item id.
type Bundle struct {
	Conversation  []Entry       `json:"conversation"`
	Correspondent []Entry       `json:"correspondent"`
	Semantic      []Entry       `json:"semantic"`
	Window        time.Duration `json:"window"`
}

// Empty reports whether the bundle carries no context at all.
func (b *Bundle) Empty() bool {
	return len(b.Conversation) == 0 && len(b.Correspondent) == 0 && len(b.Semantic) == 0
}

// Embedder produces embedding vectors for retrieval queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Assembler performs the three retrievals and fuses the semantic ranking.
type Assembler struct {
	messages messages.System
	vectors  vector.Store
	embedder Embedder
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

// New creates an Assembler. Zero config fields fall back to defaults.
func New(msgs messages.System, vectors vector.Store, embedder Embedder, logger *slog.Logger, cfg Config) *Assembler {
	cfg.LoadDefaults()
	return &Assembler{
		messages: msgs,
		vectors:  vectors,
		embedder: embedder,
		logger:   logger.With("system", "assembler"),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Assemble builds the context bundle for an inbound item. Failures of the
// embedding lookup degrade to an empty semantic list rather than failing
// the assembly; history store failures are returned.
func (a *Assembler) Assemble(ctx context.Context, item mailbox.Item) (*Bundle, error) {
	thread, err := a.messages.Thread(ctx, item.OwnerID, item.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("conversation history: %w", err)
	}
	thread = excludeItem(thread, item.ItemID)

	window := AdaptiveWindow(len(thread))
	since := a.now().Add(-window)

	ownerScope := item.OwnerID
	if a.cfg.StrictOwnerScope != nil && !*a.cfg.StrictOwnerScope {
		ownerScope = ""
	}

	correspondent, err := a.messages.FromSender(ctx, ownerScope, item.Sender, since, a.cfg.MaxCorrespondent)
	if err != nil {
		return nil, fmt.Errorf("correspondent history: %w", err)
	}
	correspondent = excludeItem(correspondent, item.ItemID)

	semantic := a.semanticMatches(ctx, item, ownerScope, since)

	bundle := &Bundle{
		Conversation:  toEntries(thread, a.cfg.BodyBudget),
		Correspondent: toEntries(correspondent, a.cfg.CorrespondentBodyBudget),
		Semantic:      semantic,
		Window:        window,
	}

	a.logger.InfoContext(
		ctx, "context assembled",
		"item_id", item.ItemID,
		"thread", len(bundle.Conversation),
		"correspondent", len(bundle.Correspondent),
		"semantic", len(bundle.Semantic),
		"window_days", int(window.Hours()/24),
	)

	return bundle, nil
}

func (a *Assembler) semanticMatches(ctx context.Context, item mailbox.Item, ownerScope string, since time.Time) []Entry {
	embedding, err := a.embedder.Embed(ctx, QueryText(item.Subject, item.Body))
	if err != nil {
		a.logger.WarnContext(ctx, "embedding lookup failed, skipping semantic retrieval",
			"item_id", item.ItemID, "error", err)
		return nil
	}

	matches, err := a.vectors.Query(ctx, embedding, vector.Filter{
		OwnerID: ownerScope,
		Sender:  item.Sender,
		Since:   since,
	}, a.cfg.SemanticK)
	if err != nil {
		a.logger.WarnContext(ctx, "similarity query failed, skipping semantic retrieval",
			"item_id", item.ItemID, "error", err)
		return nil
	}

	now := a.now()
	fused := make(map[string]float64, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.ItemID == item.ItemID {
			continue
		}
		ageDays := now.Sub(m.SentAt).Hours() / 24
		fused[m.ItemID] = FusedScore(m.Score, ageDays, a.cfg.HalfLifeDays, a.cfg.SimilarityWeight)
		ids = append(ids, m.ItemID)
	}

	hydrated, err := a.messages.ByItemIDs(ctx, ids)
	if err != nil {
		a.logger.WarnContext(ctx, "semantic match hydration failed",
			"item_id", item.ItemID, "error", err)
		return nil
	}

	entries := toEntries(hydrated, a.cfg.BodyBudget)
	for i := range entries {
		entries[i].Score = fused[entries[i].ItemID]
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

func toEntries(msgs []messages.Message, budget int) []Entry {
	entries := make([]Entry, len(msgs))
	for i, m := range msgs {
		entries[i] = Entry{
			ItemID:  m.ItemID,
			Sender:  m.Sender,
			Subject: m.Subject,
			Body:    truncate(m.Body, budget),
			SentAt:  m.SentAt,
		}
	}
	return entries
}

func excludeItem(msgs []messages.Message, itemID string) []messages.Message {
	filtered := msgs[:0]
	for _, m := range msgs {
		if m.ItemID != itemID {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "…"
}
