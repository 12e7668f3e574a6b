package messages

import (
	"context"
	"time"
)

// System defines the public contract for message history operations.
type System interface {
	// Upsert stores a message, replacing any prior copy of the same item.
	Upsert(ctx context.Context, msg Message) (*Message, error)

	// Thread returns all messages in a thread, oldest first.
	Thread(ctx context.Context, ownerID, threadID string) ([]Message, error)

	// FromSender returns messages from a sender since the given time,
	// oldest first, bounded to limit. An empty ownerID matches all owners.
	FromSender(ctx context.Context, ownerID, sender string, since time.Time, limit int) ([]Message, error)

	// ByItemIDs returns the stored messages for the given item ids.
	// Missing ids are skipped.
	ByItemIDs(ctx context.Context, itemIDs []string) ([]Message, error)
}
