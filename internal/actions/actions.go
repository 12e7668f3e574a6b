// Package actions applies approved triage decisions through the mailbox
// provider: labeling items with their category or sending drafted replies.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/mailbox"
)

// ErrNoDraft indicates a send_draft decision on a classification that
// produced no draft.
var ErrNoDraft = errors.New("no draft available to send")

// Executor applies decisions via the mailbox provider.
type Executor struct {
	provider mailbox.Provider
	logger   *slog.Logger
}

// New creates an Executor.
func New(provider mailbox.Provider, logger *slog.Logger) *Executor {
	return &Executor{
		provider: provider,
		logger:   logger.With("system", "actions"),
	}
}

// Apply performs the mailbox side effect for a decision. Rejections are
// deliberate no-ops: the item stays unlabeled for the user to handle.
func (e *Executor) Apply(ctx context.Context, item mailbox.Item, cls *classifier.Classification, decision approval.Decision) error {
	switch decision.Action {
	case approval.ActionApprove:
		return e.label(ctx, item, cls.Category)

	case approval.ActionChangeCategory:
		return e.label(ctx, item, *decision.ChosenCategory)

	case approval.ActionSendDraft:
		if cls.DraftText == nil {
			return ErrNoDraft
		}
		msg := mailbox.Outgoing{
			To:        item.Sender,
			Subject:   "Re: " + item.Subject,
			Body:      *cls.DraftText,
			InReplyTo: item.ItemID,
		}
		if err := e.provider.Send(ctx, msg); err != nil {
			return fmt.Errorf("send draft for item %s: %w", item.ItemID, err)
		}
		e.logger.InfoContext(ctx, "draft sent", "item_id", item.ItemID, "to", item.Sender)
		return nil

	case approval.ActionReject, approval.ActionRejectDraft:
		e.logger.InfoContext(ctx, "decision applied without side effect",
			"item_id", item.ItemID, "action", decision.Action)
		return nil

	default:
		return fmt.Errorf("%w: %q", approval.ErrInvalidAction, decision.Action)
	}
}

func (e *Executor) label(ctx context.Context, item mailbox.Item, category string) error {
	if err := e.provider.ApplyLabel(ctx, item.ItemID, category); err != nil {
		return fmt.Errorf("label item %s as %s: %w", item.ItemID, category, err)
	}
	e.logger.InfoContext(ctx, "item labeled", "item_id", item.ItemID, "category", category)
	return nil
}
