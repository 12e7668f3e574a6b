package classifier

import (
	"fmt"
	"strings"

	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/mailbox"
)

const systemPrompt = `You are an email triage assistant. Classify the incoming message using the provided category taxonomy and the history of prior messages.

Respond with a single JSON object:
{
  "category": "<one of the taxonomy categories>",
  "reasoning": "<why, at most 300 characters>",
  "confidence": <0.0-1.0>,
  "response_needed": <true|false>,
  "language": "<ISO 639-1 code of the message language>",
  "tone": "<formal|casual|urgent|neutral>",
  "draft_text": "<a short reply draft, or null when no response is needed>"
}

Base the classification on the message itself; use the history only to resolve ambiguity and to judge whether a response is expected.`

const fewShotExamples = `Examples:

Message from billing@hosting.example: "Your invoice #4211 is due on Friday."
{"category": "finance", "reasoning": "Invoice with a due date from a billing address.", "confidence": 0.93, "response_needed": false, "language": "en", "tone": "neutral", "draft_text": null}

Message from anna@partner.example: "Can you confirm the meeting slot tomorrow?"
{"category": "work", "reasoning": "Direct scheduling question from a work contact; expects confirmation.", "confidence": 0.88, "response_needed": true, "language": "en", "tone": "formal", "draft_text": "Confirmed, tomorrow works for me."}`

// BuildPrompt composes the user-turn prompt: the message, the taxonomy,
// few-shot examples, and the formatted context bundle. Bundle entries are
// deduplicated by item id across the three lists before formatting.
func BuildPrompt(item mailbox.Item, bundle *assembler.Bundle, categories []string) string {
	var sb strings.Builder

	sb.WriteString("Categories: ")
	sb.WriteString(strings.Join(categories, ", "))
	sb.WriteString("\n\n")
	sb.WriteString(fewShotExamples)
	sb.WriteString("\n\nIncoming message:\n")
	fmt.Fprintf(&sb, "From: %s\nSubject: %s\nDate: %s\n\n%s\n",
		item.Sender, item.Subject, item.SentAt.Format("2006-01-02"), item.Body)

	if bundle != nil && !bundle.Empty() {
		seen := map[string]bool{item.ItemID: true}
		writeSection(&sb, "Conversation thread (oldest first):", bundle.Conversation, seen)
		writeSection(&sb, "Recent messages from this sender:", bundle.Correspondent, seen)
		writeSection(&sb, "Related past messages:", bundle.Semantic, seen)
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, heading string, entries []assembler.Entry, seen map[string]bool) {
	fresh := make([]assembler.Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.ItemID] {
			continue
		}
		seen[e.ItemID] = true
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(heading)
	sb.WriteString("\n")
	for _, e := range fresh {
		fmt.Fprintf(sb, "- [%s] %s | %s: %s\n",
			e.SentAt.Format("2006-01-02"), e.Sender, e.Subject, e.Body)
	}
}
