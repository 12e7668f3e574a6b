package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/mailbox"
)

// Instance is the durable state of one triage workflow. Everything except
// Bundle survives a restart: the context bundle is rebuilt on demand, so it
// stays out of the checkpoint payload.
type Instance struct {
	ID      string `json:"id"`
	ItemID  string `json:"item_id"`
	OwnerID string `json:"owner_id"`
	Stage   Stage  `json:"stage"`

	Item           mailbox.Item               `json:"item"`
	Bundle         *assembler.Bundle          `json:"-"`
	Classification *classifier.Classification `json:"classification,omitempty"`
	Decision       *approval.Decision         `json:"decision,omitempty"`

	// NotificationRef is the approval channel's handle for the pending
	// notification, used later for the confirmation edit.
	NotificationRef string `json:"notification_ref,omitempty"`

	// Error holds the failure cause when Stage is failed.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is the checkpoint compare-and-swap token. Every successful
	// Save increments it.
	Version int64 `json:"version"`
}

// NewInstance creates an instance for an inbound item at the first stage.
func NewInstance(item mailbox.Item) *Instance {
	now := time.Now().UTC()
	return &Instance{
		ID:        uuid.NewString(),
		ItemID:    item.ItemID,
		OwnerID:   item.OwnerID,
		Stage:     StageExtracting,
		Item:      item,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Clone returns a deep-enough copy for handing instances across goroutine
// boundaries. Pointer fields are copied by value.
func (i *Instance) Clone() *Instance {
	c := *i
	if i.Classification != nil {
		cls := *i.Classification
		c.Classification = &cls
	}
	if i.Decision != nil {
		d := *i.Decision
		c.Decision = &d
	}
	return &c
}
