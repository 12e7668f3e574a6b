package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbristol/sift/pkg/pagination"
)

// MemoryCheckpointStore is an in-memory CheckpointStore with the same
// concurrency semantics as the Postgres implementation.
type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	byID   map[string]*Instance
	byItem map[string]string

	saves int
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		byID:   make(map[string]*Instance),
		byItem: make(map[string]string),
	}
}

func (m *MemoryCheckpointStore) Create(ctx context.Context, inst *Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byItem[inst.ItemID]; ok {
		return fmt.Errorf("create instance for item %s: %w", inst.ItemID, ErrDuplicateItem)
	}

	m.byID[inst.ID] = inst.Clone()
	m.byItem[inst.ItemID] = inst.ID
	return nil
}

func (m *MemoryCheckpointStore) Save(ctx context.Context, inst *Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[inst.ID]
	if !ok {
		return fmt.Errorf("save instance %s: %w", inst.ID, ErrNotFound)
	}
	if stored.Version != inst.Version {
		return fmt.Errorf("save instance %s at version %d: %w", inst.ID, inst.Version, ErrVersionConflict)
	}

	inst.Version++
	inst.UpdatedAt = time.Now().UTC()
	m.byID[inst.ID] = inst.Clone()
	m.saves++
	return nil
}

func (m *MemoryCheckpointStore) Load(ctx context.Context, instanceID string) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.byID[instanceID]
	if !ok {
		return nil, fmt.Errorf("load instance %s: %w", instanceID, ErrNotFound)
	}
	return stored.Clone(), nil
}

func (m *MemoryCheckpointStore) ByItemID(ctx context.Context, itemID string) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byItem[itemID]
	if !ok {
		return nil, fmt.Errorf("load instance for item %s: %w", itemID, ErrNotFound)
	}
	return m.byID[id].Clone(), nil
}

func (m *MemoryCheckpointStore) List(ctx context.Context, stage Stage, page pagination.PageRequest) ([]Instance, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Instance, 0)
	for _, inst := range m.byID {
		if stage != "" && inst.Stage != stage {
			continue
		}
		matched = append(matched, *inst.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if page.PageSize <= 0 || end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// SaveCount returns the number of successful checkpoints since creation.
func (m *MemoryCheckpointStore) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
