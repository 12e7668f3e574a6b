// Package vector provides the embedding similarity store used for semantic
// retrieval of prior messages. Queries are filtered by sender and time range
// so retrieval stays within the correspondent's adaptive context window.
package vector

import (
	"context"
	"time"
)

// Match is a nearest-neighbor result. Score is cosine similarity in [−1, 1].
type Match struct {
	ItemID string
	Score  float64
	SentAt time.Time
}

// Filter restricts a similarity query. Zero values disable a predicate:
// an empty OwnerID or Sender matches all, a zero Since disables the
// time bound.
type Filter struct {
	OwnerID string
	Sender  string
	Since   time.Time
}

// Store is implemented by similarity backends.
type Store interface {
	// Upsert stores or replaces the embedding for an item.
	Upsert(ctx context.Context, itemID, ownerID, sender string, sentAt time.Time, embedding []float32) error

	// Query returns the k nearest items by cosine similarity, best first.
	Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error)
}
