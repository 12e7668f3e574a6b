package vector

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

type entry struct {
	itemID    string
	ownerID   string
	sender    string
	sentAt    time.Time
	embedding []float32
}

// Memory is a process-local Store with exact cosine similarity over a linear
// scan. Suitable for tests and local runs; the Postgres store serves
// production retrieval.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
	}
}

func (s *Memory) Upsert(ctx context.Context, itemID, ownerID, sender string, sentAt time.Time, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[itemID] = entry{
		itemID:    itemID,
		ownerID:   ownerID,
		sender:    sender,
		sentAt:    sentAt,
		embedding: append([]float32(nil), embedding...),
	}
	return nil
}

func (s *Memory) Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.OwnerID != "" && e.ownerID != filter.OwnerID {
			continue
		}
		if filter.Sender != "" && e.sender != filter.Sender {
			continue
		}
		if !filter.Since.IsZero() && e.sentAt.Before(filter.Since) {
			continue
		}
		matches = append(matches, Match{
			ItemID: e.itemID,
			Score:  cosine(embedding, e.embedding),
			SentAt: e.sentAt,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
