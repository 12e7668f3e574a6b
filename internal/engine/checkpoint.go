package engine

import (
	"context"

	"github.com/kbristol/sift/pkg/pagination"
)

// CheckpointStore persists workflow instances. One row per instance, updated
// in place with optimistic concurrency: Save succeeds only when the caller
// holds the current version, so duplicate resume deliveries race to a single
// winner.
type CheckpointStore interface {
	// Create persists a new instance at version 1. Returns ErrDuplicateItem
	// when the item already has an instance.
	Create(ctx context.Context, inst *Instance) error

	// Save checkpoints the instance, expecting inst.Version to match the
	// stored version. On success the stored and in-memory versions are
	// incremented. Returns ErrVersionConflict when another writer got
	// there first.
	Save(ctx context.Context, inst *Instance) error

	// Load returns the instance by id, or ErrNotFound.
	Load(ctx context.Context, instanceID string) (*Instance, error)

	// ByItemID returns the instance for an item, or ErrNotFound.
	ByItemID(ctx context.Context, itemID string) (*Instance, error)

	// List returns a page of instances, newest first, optionally filtered
	// by stage (empty stage matches all). The second return is the total
	// matching count.
	List(ctx context.Context, stage Stage, page pagination.PageRequest) ([]Instance, int, error)
}
