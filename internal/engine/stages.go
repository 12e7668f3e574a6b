package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/messages"
)

// extract persists the inbound item into the message history and indexes
// its embedding for future semantic retrieval. Embedding failures degrade:
// the item still flows through triage, it just won't be semantically
// retrievable until reprocessed.
func (e *Engine) extract(ctx context.Context, inst *Instance) (Stage, error) {
	item := inst.Item

	msg := messages.Message{
		ItemID:   item.ItemID,
		OwnerID:  item.OwnerID,
		ThreadID: item.ThreadID,
		Sender:   item.Sender,
		Subject:  item.Subject,
		Body:     item.Body,
		SentAt:   item.SentAt,
	}
	if _, err := e.deps.Messages.Upsert(ctx, msg); err != nil {
		return "", fmt.Errorf("store message: %w", err)
	}

	embedding, err := e.deps.Embedder.Embed(ctx, assembler.QueryText(item.Subject, item.Body))
	if err != nil {
		e.logger.WarnContext(ctx, "embedding skipped",
			"instance_id", inst.ID, "item_id", item.ItemID, "error", err)
		return StageAssembling, nil
	}
	if err := e.deps.Vectors.Upsert(ctx, item.ItemID, item.OwnerID, item.Sender, item.SentAt, embedding); err != nil {
		e.logger.WarnContext(ctx, "embedding index skipped",
			"instance_id", inst.ID, "item_id", item.ItemID, "error", err)
	}
	return StageAssembling, nil
}

// assemble builds the context bundle. The bundle is not checkpointed; it
// lives only for the run that produced it, and the stages reachable on a
// redelivered event (executing, confirming) never read it.
func (e *Engine) assemble(ctx context.Context, inst *Instance) (Stage, error) {
	bundle, err := e.deps.Assembler.Assemble(ctx, inst.Item)
	if err != nil {
		return "", fmt.Errorf("assemble context: %w", err)
	}
	inst.Bundle = bundle
	return StageClassifying, nil
}

// classify scores, classifies, and notifies the approval channel, then
// suspends. Notification failure fails the instance for manual retry.
func (e *Engine) classify(ctx context.Context, inst *Instance) (Stage, error) {
	result := e.deps.Priority.Score(inst.Item.Sender, inst.Item.Subject, inst.Item.Body)
	inst.Classification = e.deps.Classifier.Classify(ctx, inst.Item, inst.Bundle, result.Score)

	ref, err := e.deps.Approval.Notify(ctx, approval.Notification{
		InstanceID: inst.ID,
		Summary:    notificationSummary(inst),
		Actions:    availableActions(inst),
		Priority:   result.IsPriority,
	})
	if err != nil {
		return "", fmt.Errorf("notify approval channel: %w", err)
	}
	inst.NotificationRef = ref

	return StageAwaitingDecision, nil
}

// execute applies the recorded decision through the mailbox provider. The
// action lands before the confirming checkpoint, so a crash after this stage
// resumes into re-sending confirmation rather than re-applying the action.
func (e *Engine) execute(ctx context.Context, inst *Instance) (Stage, error) {
	if inst.Decision == nil {
		return "", errors.New("no decision recorded")
	}
	if err := e.deps.Actions.Apply(ctx, inst.Item, inst.Classification, *inst.Decision); err != nil {
		return "", fmt.Errorf("apply decision %s: %w", inst.Decision.Action, err)
	}
	return StageConfirming, nil
}

// confirm updates the approval notification with the outcome.
func (e *Engine) confirm(ctx context.Context, inst *Instance) (Stage, error) {
	if inst.NotificationRef == "" {
		return StageDone, nil
	}
	if err := e.deps.Approval.Edit(ctx, inst.NotificationRef, confirmationText(inst)); err != nil {
		return "", fmt.Errorf("confirm on approval channel: %w", err)
	}
	return StageDone, nil
}

// notificationSummary renders the approval request text.
func notificationSummary(inst *Instance) string {
	cls := inst.Classification

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\nSubject: %s\n", inst.Item.Sender, inst.Item.Subject)
	fmt.Fprintf(&sb, "Category: %s (confidence %.2f", cls.Category, cls.Confidence)
	if cls.Fallback {
		sb.WriteString(", rule-based")
	}
	sb.WriteString(")\n")
	fmt.Fprintf(&sb, "Priority: %d\n", cls.PriorityScore)
	if cls.Reasoning != "" {
		fmt.Fprintf(&sb, "Reasoning: %s\n", cls.Reasoning)
	}
	if cls.DraftText != nil {
		fmt.Fprintf(&sb, "Draft reply:\n%s\n", *cls.DraftText)
	}
	return sb.String()
}

// availableActions lists the decisions valid for this classification. Draft
// actions appear only when a draft exists.
func availableActions(inst *Instance) []approval.Action {
	actions := []approval.Action{
		approval.ActionApprove,
		approval.ActionReject,
		approval.ActionChangeCategory,
	}
	if inst.Classification.DraftText != nil {
		actions = append(actions, approval.ActionSendDraft, approval.ActionRejectDraft)
	}
	return actions
}

func confirmationText(inst *Instance) string {
	var outcome string
	switch d := inst.Decision; d.Action {
	case approval.ActionApprove:
		outcome = fmt.Sprintf("Filed as %s.", inst.Classification.Category)
	case approval.ActionChangeCategory:
		outcome = fmt.Sprintf("Filed as %s.", *d.ChosenCategory)
	case approval.ActionSendDraft:
		outcome = fmt.Sprintf("Draft sent to %s.", inst.Item.Sender)
	case approval.ActionRejectDraft:
		outcome = "Draft discarded."
	default:
		outcome = "No action taken."
	}

	cls := inst.Classification
	return fmt.Sprintf("%s Priority %d, language %s, tone %s.",
		outcome, cls.PriorityScore, cls.Language, cls.Tone)
}
