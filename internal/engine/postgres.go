package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kbristol/sift/pkg/pagination"
	"github.com/kbristol/sift/pkg/repository"
)

type checkpointRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCheckpointStore creates the Postgres-backed checkpoint store.
func NewCheckpointStore(db *sql.DB, logger *slog.Logger) CheckpointStore {
	return &checkpointRepo{
		db:     db,
		logger: logger.With("system", "checkpoints"),
	}
}

func (r *checkpointRepo) Create(ctx context.Context, inst *Instance) error {
	payload, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshal instance %s: %w", inst.ID, err)
	}

	q := `
		INSERT INTO workflow_instances(instance_id, item_id, stage, payload, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, q,
		inst.ID, inst.ItemID, string(inst.Stage), payload, inst.Version, inst.CreatedAt, inst.UpdatedAt)
	if err != nil {
		return repository.MapError(fmt.Errorf("create instance %s: %w", inst.ID, err), ErrNotFound, ErrDuplicateItem)
	}
	return nil
}

func (r *checkpointRepo) Save(ctx context.Context, inst *Instance) error {
	next := inst.Clone()
	next.Version = inst.Version + 1
	next.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal instance %s: %w", inst.ID, err)
	}

	q := `
		UPDATE workflow_instances
		SET stage = $1, payload = $2, version = $3, updated_at = $4
		WHERE instance_id = $5 AND version = $6`

	err = repository.ExecExpectOne(ctx, r.db, q,
		string(next.Stage), payload, next.Version, next.UpdatedAt, inst.ID, inst.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("save instance %s at version %d: %w", inst.ID, inst.Version, ErrVersionConflict)
		}
		return fmt.Errorf("save instance %s: %w", inst.ID, err)
	}

	inst.Version = next.Version
	inst.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *checkpointRepo) Load(ctx context.Context, instanceID string) (*Instance, error) {
	q := `
		SELECT payload, stage, version, updated_at
		FROM workflow_instances
		WHERE instance_id = $1`

	inst, err := repository.QueryOne(ctx, r.db, q, []any{instanceID}, scanInstance)
	if err != nil {
		return nil, repository.MapError(fmt.Errorf("load instance %s: %w", instanceID, err), ErrNotFound, ErrDuplicateItem)
	}
	return &inst, nil
}

func (r *checkpointRepo) ByItemID(ctx context.Context, itemID string) (*Instance, error) {
	q := `
		SELECT payload, stage, version, updated_at
		FROM workflow_instances
		WHERE item_id = $1`

	inst, err := repository.QueryOne(ctx, r.db, q, []any{itemID}, scanInstance)
	if err != nil {
		return nil, repository.MapError(fmt.Errorf("load instance for item %s: %w", itemID, err), ErrNotFound, ErrDuplicateItem)
	}
	return &inst, nil
}

func (r *checkpointRepo) List(ctx context.Context, stage Stage, page pagination.PageRequest) ([]Instance, int, error) {
	countQ := `
		SELECT COUNT(*)
		FROM workflow_instances
		WHERE ($1 = '' OR stage = $1)`

	total, err := repository.QueryOne(ctx, r.db, countQ, []any{string(stage)}, func(s repository.Scanner) (int, error) {
		var n int
		err := s.Scan(&n)
		return n, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count instances: %w", err)
	}

	q := `
		SELECT payload, stage, version, updated_at
		FROM workflow_instances
		WHERE ($1 = '' OR stage = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	instances, err := repository.QueryMany(ctx, r.db, q, []any{string(stage), page.PageSize, page.Offset()}, scanInstance)
	if err != nil {
		return nil, 0, fmt.Errorf("list instances: %w", err)
	}
	return instances, total, nil
}

// scanInstance decodes the payload and overlays the authoritative row
// columns, which can be newer than the payload copy when a concurrent
// writer saved between marshal and read.
func scanInstance(s repository.Scanner) (Instance, error) {
	var (
		payload   []byte
		stage     string
		version   int64
		updatedAt time.Time
	)
	if err := s.Scan(&payload, &stage, &version, &updatedAt); err != nil {
		return Instance{}, err
	}

	var inst Instance
	if err := json.Unmarshal(payload, &inst); err != nil {
		return Instance{}, fmt.Errorf("decode instance payload: %w", err)
	}

	inst.Stage = Stage(stage)
	inst.Version = version
	inst.UpdatedAt = updatedAt
	return inst, nil
}
