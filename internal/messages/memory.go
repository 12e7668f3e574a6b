package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a process-local System used in tests and local runs.
type Memory struct {
	mu     sync.RWMutex
	byItem map[string]Message
}

// NewMemory creates an empty in-memory message store.
func NewMemory() *Memory {
	return &Memory{
		byItem: make(map[string]Message),
	}
}

func (m *Memory) Upsert(ctx context.Context, msg Message) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byItem[msg.ItemID]; ok {
		msg.ID = existing.ID
		msg.StoredAt = existing.StoredAt
	} else {
		msg.ID = uuid.New()
		msg.StoredAt = time.Now()
	}
	m.byItem[msg.ItemID] = msg
	return &msg, nil
}

func (m *Memory) Thread(ctx context.Context, ownerID, threadID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []Message
	for _, msg := range m.byItem {
		if msg.OwnerID == ownerID && msg.ThreadID == threadID {
			msgs = append(msgs, msg)
		}
	}
	sortBySentAt(msgs)
	return msgs, nil
}

func (m *Memory) FromSender(ctx context.Context, ownerID, sender string, since time.Time, limit int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []Message
	for _, msg := range m.byItem {
		if ownerID != "" && msg.OwnerID != ownerID {
			continue
		}
		if msg.Sender != sender || msg.SentAt.Before(since) {
			continue
		}
		msgs = append(msgs, msg)
	}
	sortBySentAt(msgs)

	// Keep the most recent messages when over the limit.
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (m *Memory) ByItemIDs(ctx context.Context, itemIDs []string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := make([]Message, 0, len(itemIDs))
	for _, id := range itemIDs {
		if msg, ok := m.byItem[id]; ok {
			msgs = append(msgs, msg)
		}
	}
	sortBySentAt(msgs)
	return msgs, nil
}

func sortBySentAt(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
}
