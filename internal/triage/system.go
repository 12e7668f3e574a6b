// Package triage exposes the workflow engine as a service: batch processing
// of unread mailbox items through a bounded worker pool, decision delivery,
// and instance inspection over HTTP.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/engine"
	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/pkg/pagination"
)

// ProcessResult summarizes one ProcessUnread run.
type ProcessResult struct {
	Fetched   int `json:"fetched"`
	Started   int `json:"started"`
	Suspended int `json:"suspended"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// System defines the public contract for triage operations.
type System interface {
	Handler() *Handler

	// ProcessUnread fetches unread items and starts a workflow for each,
	// bounded by the configured worker count. Items that already have an
	// instance are skipped.
	ProcessUnread(ctx context.Context) (*ProcessResult, error)

	// Resume delivers a decision to a suspended instance.
	Resume(ctx context.Context, instanceID string, decision approval.Decision) (*engine.Instance, error)

	// List returns a page of instances, optionally filtered by stage.
	List(ctx context.Context, page pagination.PageRequest, stage string) (*pagination.PageResult[engine.Instance], error)

	// Find returns an instance by id.
	Find(ctx context.Context, instanceID string) (*engine.Instance, error)
}

type system struct {
	engine      *engine.Engine
	checkpoints engine.CheckpointStore
	provider    mailbox.Provider
	logger      *slog.Logger
	pagination  pagination.Config
	workers     int
}

// New creates the triage system over an engine and its checkpoint store.
func New(
	eng *engine.Engine,
	checkpoints engine.CheckpointStore,
	provider mailbox.Provider,
	logger *slog.Logger,
	pageCfg pagination.Config,
	workers int,
) System {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &system{
		engine:      eng,
		checkpoints: checkpoints,
		provider:    provider,
		logger:      logger.With("system", "triage"),
		pagination:  pageCfg,
		workers:     workers,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) ProcessUnread(ctx context.Context) (*ProcessResult, error) {
	items, err := s.provider.FetchUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch unread: %w", err)
	}

	var started, suspended, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, item := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			inst, err := s.engine.Start(gctx, item)
			switch {
			case errors.Is(err, engine.ErrDuplicateItem):
				skipped.Add(1)
				return nil
			case err != nil:
				// Checkpoint persistence failure: count it and keep the
				// batch going, the item remains unread for the next run.
				s.logger.ErrorContext(gctx, "workflow start failed",
					"item_id", item.ItemID, "error", err)
				failed.Add(1)
				return nil
			}

			started.Add(1)
			switch inst.Stage {
			case engine.StageFailed:
				failed.Add(1)
			case engine.StageAwaitingDecision:
				suspended.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("process unread: %w", err)
	}

	result := &ProcessResult{
		Fetched:   len(items),
		Started:   int(started.Load()),
		Suspended: int(suspended.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}

	s.logger.InfoContext(ctx, "unread batch processed",
		"fetched", result.Fetched,
		"started", result.Started,
		"suspended", result.Suspended,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *system) Resume(ctx context.Context, instanceID string, decision approval.Decision) (*engine.Instance, error) {
	return s.engine.Resume(ctx, instanceID, decision)
}

func (s *system) List(ctx context.Context, page pagination.PageRequest, stage string) (*pagination.PageResult[engine.Instance], error) {
	page.Normalize(s.pagination)

	var stageFilter engine.Stage
	if stage != "" {
		parsed, err := engine.ParseStage(stage)
		if err != nil {
			return nil, err
		}
		stageFilter = parsed
	}

	instances, total, err := s.checkpoints.List(ctx, stageFilter, page)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(instances, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *system) Find(ctx context.Context, instanceID string) (*engine.Instance, error) {
	return s.checkpoints.Load(ctx, instanceID)
}
