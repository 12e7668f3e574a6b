// Package mailbox defines the inbound message provider contract. The
// orchestrator consumes it for fetching unread items, labeling processed
// ones, and sending outbound mail; concrete transports live behind the
// Provider interface.
package mailbox

import (
	"context"
	"time"
)

// Item is an inbound message as delivered by the provider.
type Item struct {
	ItemID   string    `json:"item_id"`
	OwnerID  string    `json:"owner_id"`
	ThreadID string    `json:"thread_id"`
	Sender   string    `json:"sender"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// Outgoing is a message to be sent through the provider.
type Outgoing struct {
	To        string
	Subject   string
	Body      string
	InReplyTo string
}

// Provider is implemented by mail transports.
type Provider interface {
	// FetchUnread returns items not yet processed.
	FetchUnread(ctx context.Context) ([]Item, error)

	// ApplyLabel attaches a label to an item.
	ApplyLabel(ctx context.Context, itemID, label string) error

	// Send delivers an outgoing message.
	Send(ctx context.Context, msg Outgoing) error
}
