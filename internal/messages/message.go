// Package messages implements the message history domain. Processed items
// are persisted here so they become retrievable context for future triage:
// thread lookups, correspondent history, and hydration of semantic matches.
package messages

import (
	"time"

	"github.com/google/uuid"
)

// Message is a stored inbound message.
type Message struct {
	ID       uuid.UUID `json:"id"`
	ItemID   string    `json:"item_id"`
	OwnerID  string    `json:"owner_id"`
	ThreadID string    `json:"thread_id"`
	Sender   string    `json:"sender"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
	StoredAt time.Time `json:"stored_at"`
}
