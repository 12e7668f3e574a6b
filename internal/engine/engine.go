package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/internal/messages"
	"github.com/kbristol/sift/internal/priority"
	"github.com/kbristol/sift/internal/vector"
)

// ContextAssembler builds the retrieval bundle for an item.
type ContextAssembler interface {
	Assemble(ctx context.Context, item mailbox.Item) (*assembler.Bundle, error)
}

// ItemClassifier categorizes an item against its context bundle.
type ItemClassifier interface {
	Classify(ctx context.Context, item mailbox.Item, bundle *assembler.Bundle, priorityScore int) *classifier.Classification
}

// ActionExecutor applies an approved decision through the mailbox provider.
type ActionExecutor interface {
	Apply(ctx context.Context, item mailbox.Item, cls *classifier.Classification, decision approval.Decision) error
}

// Dependencies binds every collaborator a stage handler may touch. Handlers
// receive nothing else, so the full surface of a transition is visible here.
type Dependencies struct {
	Checkpoints CheckpointStore
	Messages    messages.System
	Vectors     vector.Store
	Embedder    assembler.Embedder
	Assembler   ContextAssembler
	Priority    *priority.Scorer
	Classifier  ItemClassifier
	Approval    approval.Channel
	Actions     ActionExecutor
	Logger      *slog.Logger
}

// HandlerFunc runs one stage and names the next. A returned error fails the
// instance.
type HandlerFunc func(ctx context.Context, inst *Instance) (Stage, error)

// Engine drives workflow instances through the stage sequence.
type Engine struct {
	deps     Dependencies
	handlers map[Stage]HandlerFunc
	logger   *slog.Logger
}

// New creates an Engine with the standard stage dispatch table.
func New(deps Dependencies) *Engine {
	e := &Engine{
		deps:   deps,
		logger: deps.Logger.With("system", "engine"),
	}
	e.handlers = map[Stage]HandlerFunc{
		StageExtracting:  e.extract,
		StageAssembling:  e.assemble,
		StageClassifying: e.classify,
		StageExecuting:   e.execute,
		StageConfirming:  e.confirm,
	}
	return e
}

// Start creates an instance for the item and drives it until it suspends at
// awaiting_decision or reaches a terminal stage. Stage failures are recorded
// on the instance, not returned; the error return covers only checkpoint
// persistence and duplicate items (ErrDuplicateItem).
func (e *Engine) Start(ctx context.Context, item mailbox.Item) (*Instance, error) {
	inst := NewInstance(item)
	if err := e.deps.Checkpoints.Create(ctx, inst); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "workflow started",
		"instance_id", inst.ID, "item_id", inst.ItemID, "owner_id", inst.OwnerID)

	return e.run(ctx, inst)
}

// Resume delivers a decision to a suspended instance and drives it to a
// terminal stage. A redelivered event for an instance already carrying a
// checkpointed decision (a crash left it at executing or confirming)
// continues from that checkpoint under the stored decision. Terminal
// instances return unchanged, so duplicate deliveries are no-ops; when two
// deliveries race, the checkpoint version decides the winner and the loser
// observes the winner's state.
func (e *Engine) Resume(ctx context.Context, instanceID string, decision approval.Decision) (*Instance, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	inst, err := e.deps.Checkpoints.Load(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	switch {
	case inst.Stage.Suspended():
		d := decision
		inst.Decision = &d
		inst.Stage = StageExecuting

		if err := e.deps.Checkpoints.Save(ctx, inst); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				e.logger.InfoContext(ctx, "resume lost checkpoint race",
					"instance_id", inst.ID)
				return e.deps.Checkpoints.Load(ctx, instanceID)
			}
			return nil, err
		}

		e.logger.InfoContext(ctx, "workflow resumed",
			"instance_id", inst.ID, "action", decision.Action)

	case !inst.Stage.Terminal() && inst.Decision != nil:
		// The stored decision, not the redelivered one, drives the
		// remaining stages, so side effects checkpointed before the crash
		// are not repeated.
		e.logger.InfoContext(ctx, "resume continuing from checkpoint",
			"instance_id", inst.ID, "stage", inst.Stage)

	default:
		e.logger.InfoContext(ctx, "resume ignored, instance not awaiting decision",
			"instance_id", inst.ID, "stage", inst.Stage)
		return inst, nil
	}

	return e.run(ctx, inst)
}

// run executes stage handlers until the instance suspends or terminates,
// checkpointing after every transition.
func (e *Engine) run(ctx context.Context, inst *Instance) (*Instance, error) {
	for !inst.Stage.Terminal() && !inst.Stage.Suspended() {
		handler, ok := e.handlers[inst.Stage]
		if !ok {
			inst.Error = fmt.Sprintf("no handler for stage %q", inst.Stage)
			inst.Stage = StageFailed
		} else if next, err := handler(ctx, inst); err != nil {
			e.logger.ErrorContext(ctx, "stage failed",
				"instance_id", inst.ID, "stage", inst.Stage, "error", err)
			inst.Error = err.Error()
			inst.Stage = StageFailed
		} else {
			inst.Stage = next
		}

		if err := e.deps.Checkpoints.Save(ctx, inst); err != nil {
			return inst, fmt.Errorf("checkpoint instance %s: %w", inst.ID, err)
		}

		e.logger.InfoContext(ctx, "stage transition",
			"instance_id", inst.ID, "stage", inst.Stage, "version", inst.Version)
	}
	return inst, nil
}
