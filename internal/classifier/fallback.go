package classifier

import (
	"strings"

	"github.com/kbristol/sift/internal/mailbox"
)

// fallback is the deterministic classification path. It never leaves
// category, language, or tone empty; the audit summary and the action
// stage depend on all three being set.
func (c *Classifier) fallback(item mailbox.Item, priorityScore int) *Classification {
	text := item.Subject + "\n" + item.Body
	language := DetectLanguage(text)

	return &Classification{
		Category:       c.cfg.FallbackCategory,
		Reasoning:      "Rule-based classification: inference unavailable or returned invalid output.",
		PriorityScore:  priorityScore,
		Confidence:     0.3,
		ResponseNeeded: ResponseNeeded(text, language),
		Language:       language,
		Tone:           DetectTone(text, priorityScore),
		Fallback:       true,
	}
}

// ResponseNeeded reports whether the text appears to expect a reply:
// a question mark anywhere, or a language-specific question or imperative
// keyword matched on word boundaries.
func ResponseNeeded(text, language string) bool {
	if strings.Contains(text, "?") || strings.Contains(text, "¿") {
		return true
	}

	keywords, ok := responseKeywords[language]
	if !ok {
		// Unknown language: check every supported set.
		for _, kws := range responseKeywords {
			if matchesAny(text, kws) {
				return true
			}
		}
		return false
	}
	return matchesAny(text, keywords)
}

// DetectLanguage returns the dominant language of the text among the
// supported set, defaulting to English. Detection counts hits from small
// per-language marker word lists; it is intentionally coarse since only
// the keyword-set choice and the audit summary depend on it.
func DetectLanguage(text string) string {
	best := "en"
	bestHits := 0

	for lang, markers := range languageMarkers {
		hits := 0
		for _, marker := range markers {
			hits += countWord(text, marker)
		}
		if hits > bestHits {
			best = lang
			bestHits = hits
		}
	}
	return best
}

// DetectTone derives a coarse tone label from content signals. Urgency
// outranks the greeting-based formal/casual split.
func DetectTone(text string, priorityScore int) string {
	lowered := strings.ToLower(text)

	if priorityScore >= 70 || matchesAny(lowered, urgentMarkers) {
		return "urgent"
	}
	if matchesAny(lowered, formalGreetings) {
		return "formal"
	}
	if matchesAny(lowered, casualGreetings) {
		return "casual"
	}
	return "neutral"
}
