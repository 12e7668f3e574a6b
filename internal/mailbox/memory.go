package mailbox

import (
	"context"
	"sync"
)

// Memory is an in-process Provider used in tests and local runs. Items are
// queued with Enqueue and drained by FetchUnread; labels and sends are
// recorded for inspection.
type Memory struct {
	mu     sync.Mutex
	unread []Item
	labels map[string][]string
	sent   []Outgoing

	// FailLabel and FailSend, when set, are returned by the corresponding
	// operations to exercise failure paths.
	FailLabel error
	FailSend  error
}

// NewMemory creates an empty in-process mailbox.
func NewMemory() *Memory {
	return &Memory{
		labels: make(map[string][]string),
	}
}

// Enqueue adds items to the unread queue.
func (m *Memory) Enqueue(items ...Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unread = append(m.unread, items...)
}

func (m *Memory) FetchUnread(ctx context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.unread
	m.unread = nil
	return items, nil
}

func (m *Memory) ApplyLabel(ctx context.Context, itemID, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLabel != nil {
		return m.FailLabel
	}
	m.labels[itemID] = append(m.labels[itemID], label)
	return nil
}

func (m *Memory) Send(ctx context.Context, msg Outgoing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSend != nil {
		return m.FailSend
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Labels returns the labels applied to an item.
func (m *Memory) Labels(itemID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.labels[itemID]...)
}

// Sent returns all messages sent so far.
func (m *Memory) Sent() []Outgoing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Outgoing(nil), m.sent...)
}
