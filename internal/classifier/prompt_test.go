package classifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/mailbox"
)

func promptItem() mailbox.Item {
	return mailbox.Item{
		ItemID:   "item-1",
		OwnerID:  "owner-1",
		ThreadID: "thread-1",
		Sender:   "alice@example.com",
		Subject:  "quarterly numbers",
		Body:     "Can you review the attached figures?",
		SentAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func entry(itemID, subject string) assembler.Entry {
	return assembler.Entry{
		ItemID:  itemID,
		Sender:  "alice@example.com",
		Subject: subject,
		Body:    "body of " + itemID,
		SentAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildPromptIncludesTaxonomyAndMessage(t *testing.T) {
	prompt := BuildPrompt(promptItem(), nil, []string{"work", "personal", "other"})

	assert.Contains(t, prompt, "Categories: work, personal, other")
	assert.Contains(t, prompt, "From: alice@example.com")
	assert.Contains(t, prompt, "quarterly numbers")
	assert.Contains(t, prompt, "Can you review the attached figures?")
	assert.NotContains(t, prompt, "Conversation thread")
}

func TestBuildPromptExcludesIncomingItem(t *testing.T) {
	bundle := &assembler.Bundle{
		Conversation: []assembler.Entry{entry("item-1", "quarterly numbers"), entry("prior", "last quarter")},
	}

	prompt := BuildPrompt(promptItem(), bundle, []string{"work"})

	assert.Contains(t, prompt, "last quarter")
	assert.Equal(t, 1, strings.Count(prompt, "body of prior"))
	assert.NotContains(t, prompt, "body of item-1")
}

func TestBuildPromptDeduplicatesAcrossSections(t *testing.T) {
	shared := entry("shared", "budget follow-up")
	bundle := &assembler.Bundle{
		Conversation:  []assembler.Entry{shared},
		Correspondent: []assembler.Entry{shared, entry("corr", "other note")},
		Semantic:      []assembler.Entry{shared},
	}

	prompt := BuildPrompt(promptItem(), bundle, []string{"work"})

	assert.Equal(t, 1, strings.Count(prompt, "body of shared"))
	assert.Contains(t, prompt, "Conversation thread")
	assert.Contains(t, prompt, "Recent messages from this sender")
	// The semantic section collapses entirely once its only entry is a duplicate.
	assert.NotContains(t, prompt, "Related past messages")
}

func TestBuildPromptEmptyBundleOmitsSections(t *testing.T) {
	prompt := BuildPrompt(promptItem(), &assembler.Bundle{}, []string{"work"})

	assert.NotContains(t, prompt, "Conversation thread")
	assert.NotContains(t, prompt, "Recent messages from this sender")
	assert.NotContains(t, prompt, "Related past messages")
}
