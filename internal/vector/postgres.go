package vector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kbristol/sift/pkg/repository"
)

// Postgres implements Store on the pgvector extension. Embeddings live in
// the message_embeddings table alongside the filter columns, so similarity
// search and metadata filtering resolve in a single query.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a pgvector-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, itemID, ownerID, sender string, sentAt time.Time, embedding []float32) error {
	q := `
		INSERT INTO message_embeddings(item_id, owner_id, sender, sent_at, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			sender = EXCLUDED.sender,
			sent_at = EXCLUDED.sent_at,
			embedding = EXCLUDED.embedding`

	if _, err := s.db.ExecContext(ctx, q, itemID, ownerID, sender, sentAt, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("upsert embedding %s: %w", itemID, err)
	}
	return nil
}

func (s *Postgres) Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error) {
	q := `
		SELECT item_id, 1 - (embedding <=> $1) AS similarity, sent_at
		FROM message_embeddings
		WHERE ($2 = '' OR owner_id = $2)
		  AND ($3 = '' OR sender = $3)
		  AND ($4::timestamptz IS NULL OR sent_at >= $4)
		ORDER BY embedding <=> $1
		LIMIT $5`

	var since *time.Time
	if !filter.Since.IsZero() {
		since = &filter.Since
	}

	args := []any{pgvector.NewVector(embedding), filter.OwnerID, filter.Sender, since, k}
	matches, err := repository.QueryMany(ctx, s.db, q, args, scanMatch)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	return matches, nil
}

func scanMatch(s repository.Scanner) (Match, error) {
	var m Match
	err := s.Scan(&m.ItemID, &m.Score, &m.SentAt)
	return m, err
}
