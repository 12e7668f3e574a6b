// Package approval defines the outbound human-approval channel contract and
// the decision events it delivers back into the engine. The channel is the
// only source of resume events the orchestrator accepts.
package approval

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Action identifies a decision taken on the approval channel.
type Action string

// Decision actions available to the approver.
const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionChangeCategory Action = "change_category"
	ActionSendDraft      Action = "send_draft"
	ActionRejectDraft    Action = "reject_draft"
)

var actions = []Action{
	ActionApprove,
	ActionReject,
	ActionChangeCategory,
	ActionSendDraft,
	ActionRejectDraft,
}

// Actions returns the list of valid decision actions.
func Actions() []Action {
	return actions
}

// ErrInvalidAction indicates an unrecognized or incomplete decision.
var ErrInvalidAction = errors.New("invalid decision action")

// Decision is the event delivered when the approver acts on a notification.
type Decision struct {
	Action         Action  `json:"action"`
	ChosenCategory *string `json:"chosen_category,omitempty"`
}

// Validate checks that the action is known and, for category changes,
// that a category was chosen.
func (d Decision) Validate() error {
	if !slices.Contains(actions, d.Action) {
		return fmt.Errorf("%w: %q", ErrInvalidAction, d.Action)
	}
	if d.Action == ActionChangeCategory && (d.ChosenCategory == nil || *d.ChosenCategory == "") {
		return fmt.Errorf("%w: change_category requires a chosen category", ErrInvalidAction)
	}
	return nil
}

// Notification is the approval request pushed onto the channel.
type Notification struct {
	InstanceID string
	Summary    string
	Actions    []Action
	Priority   bool
}

// Channel is implemented by approval transports. Notify returns an opaque
// reference used later to edit or delete the sent notification.
type Channel interface {
	Notify(ctx context.Context, n Notification) (ref string, err error)
	Edit(ctx context.Context, ref, text string) error
	Delete(ctx context.Context, ref string) error
}
