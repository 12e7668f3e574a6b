package classifier

import (
	"strings"
	"unicode"
)

// Keyword matching is word-boundary aware: "ask" must not match inside
// "Nebraska", and boundaries must respect accented letters, so matches
// are validated against unicode letter classes rather than \b.

// responseKeywords are question and request markers per ISO 639-1 code.
var responseKeywords = map[string][]string{
	"en": {
		"please", "could you", "can you", "would you", "let me know",
		"confirm", "respond", "reply", "rsvp", "asap",
	},
	"de": {
		"bitte", "könnten sie", "kannst du", "bestätigen", "antworten",
		"rückmeldung", "melden sie sich",
	},
	"fr": {
		"s'il vous plaît", "pourriez-vous", "peux-tu", "merci de",
		"confirmer", "répondre", "veuillez",
	},
	"es": {
		"por favor", "podría", "puedes", "confirmar", "responder",
		"avísame", "necesito",
	},
}

// languageMarkers are high-frequency function words distinctive enough
// to separate the supported languages from each other.
var languageMarkers = map[string][]string{
	"en": {"the", "and", "with", "for", "this", "that", "have", "from"},
	"de": {"der", "die", "das", "und", "nicht", "ich", "sie", "mit", "für"},
	"fr": {"le", "la", "les", "est", "vous", "nous", "dans", "pour", "être"},
	"es": {"el", "los", "las", "está", "usted", "nosotros", "para", "pero", "gracias"},
}

var urgentMarkers = []string{
	"urgent", "asap", "immediately", "deadline", "overdue", "critical",
	"dringend", "sofort", "urgence", "immédiatement", "urgente", "inmediatamente",
}

var formalGreetings = []string{
	"dear", "sincerely", "regards", "to whom it may concern",
	"sehr geehrte", "mit freundlichen grüßen",
	"madame", "monsieur", "cordialement",
	"estimado", "estimada", "atentamente",
}

var casualGreetings = []string{
	"hey", "hi there", "thanks!", "cheers", "lol",
	"hallo zusammen", "salut", "hola",
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if countWord(text, kw) > 0 {
			return true
		}
	}
	return false
}

// countWord counts case-insensitive occurrences of word in text where
// the occurrence is not flanked by letters on either side.
func countWord(text, word string) int {
	lowered := strings.ToLower(text)
	word = strings.ToLower(word)

	count := 0
	for start := 0; ; {
		idx := strings.Index(lowered[start:], word)
		if idx < 0 {
			break
		}
		idx += start
		if boundaryBefore(lowered, idx) && boundaryAfter(lowered, idx+len(word)) {
			count++
		}
		start = idx + len(word)
	}
	return count
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r := lastRune(s[:idx])
	return !unicode.IsLetter(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r := firstRune(s[idx:])
	return !unicode.IsLetter(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}
