package messages

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kbristol/sift/pkg/repository"
)

const messageColumns = `id, item_id, owner_id, thread_id, sender, subject, body, sent_at, stored_at`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a message repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "messages"),
	}
}

func (r *repo) Upsert(ctx context.Context, msg Message) (*Message, error) {
	q := `
		INSERT INTO messages(item_id, owner_id, thread_id, sender, subject, body, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			thread_id = EXCLUDED.thread_id,
			sender = EXCLUDED.sender,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			sent_at = EXCLUDED.sent_at
		RETURNING ` + messageColumns

	args := []any{msg.ItemID, msg.OwnerID, msg.ThreadID, msg.Sender, msg.Subject, msg.Body, msg.SentAt}

	stored, err := repository.QueryOne(ctx, r.db, q, args, scanMessage)
	if err != nil {
		return nil, repository.MapError(fmt.Errorf("upsert message %s: %w", msg.ItemID, err), ErrNotFound, ErrDuplicate)
	}
	return &stored, nil
}

func (r *repo) Thread(ctx context.Context, ownerID, threadID string) ([]Message, error) {
	q := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE owner_id = $1 AND thread_id = $2
		ORDER BY sent_at ASC`

	msgs, err := repository.QueryMany(ctx, r.db, q, []any{ownerID, threadID}, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query thread %s: %w", threadID, err)
	}
	return msgs, nil
}

func (r *repo) FromSender(ctx context.Context, ownerID, sender string, since time.Time, limit int) ([]Message, error) {
	// The inner query takes the most recent messages inside the window;
	// the outer one restores chronological order for the prompt.
	q := `
		SELECT ` + messageColumns + `
		FROM (
			SELECT ` + messageColumns + `
			FROM messages
			WHERE ($1 = '' OR owner_id = $1) AND sender = $2 AND sent_at >= $3
			ORDER BY sent_at DESC
			LIMIT $4
		) recent
		ORDER BY sent_at ASC`

	msgs, err := repository.QueryMany(ctx, r.db, q, []any{ownerID, sender, since, limit}, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query sender history %s: %w", sender, err)
	}
	return msgs, nil
}

func (r *repo) ByItemIDs(ctx context.Context, itemIDs []string) ([]Message, error) {
	if len(itemIDs) == 0 {
		return []Message{}, nil
	}

	q := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE item_id = ANY($1)
		ORDER BY sent_at ASC`

	msgs, err := repository.QueryMany(ctx, r.db, q, []any{itemIDs}, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages by item ids: %w", err)
	}
	return msgs, nil
}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	err := s.Scan(
		&m.ID,
		&m.ItemID,
		&m.OwnerID,
		&m.ThreadID,
		&m.Sender,
		&m.Subject,
		&m.Body,
		&m.SentAt,
		&m.StoredAt,
	)
	return m, err
}
