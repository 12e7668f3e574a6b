package assembler

import (
	"math"
	"time"
)

// Adaptive lookback windows, selected by how established the conversation is.
// Short-lived exchanges get a narrow window so stale, unrelated history stays
// out of the prompt; ongoing relationships keep deep history.
const (
	newCorrespondentWindow = 30 * 24 * time.Hour
	shortThreadWindow      = 60 * 24 * time.Hour
	fullWindow             = 90 * 24 * time.Hour

	shortThreadMax = 3
)

// AdaptiveWindow returns the correspondent lookback window for a thread with
// the given number of prior messages.
func AdaptiveWindow(threadLength int) time.Duration {
	switch {
	case threadLength == 0:
		return newCorrespondentWindow
	case threadLength <= shortThreadMax:
		return shortThreadWindow
	default:
		return fullWindow
	}
}

// RecencyScore returns exp(−ln2 · ageDays / halfLifeDays): 1.0 for a fresh
// message, exactly 0.5 at the half-life, a quarter at twice the half-life.
func RecencyScore(ageDays, halfLifeDays float64) float64 {
	if ageDays <= 0 {
		return 1.0
	}
	return math.Exp(-math.Ln2 * ageDays / halfLifeDays)
}

// FusedScore blends cosine similarity with recency. Pure similarity ranks
// topically similar but resolved history above recent, still-live context;
// the recency term corrects for that without discarding relevance.
func FusedScore(similarity, ageDays, halfLifeDays, similarityWeight float64) float64 {
	return similarityWeight*similarity + (1-similarityWeight)*RecencyScore(ageDays, halfLifeDays)
}

// QueryText builds the embedding query for a message. The subject line is
// duplicated ahead of the body: subject terms are disproportionately
// informative for topical matching.
func QueryText(subject, body string) string {
	return subject + "\n" + subject + "\n" + body
}
