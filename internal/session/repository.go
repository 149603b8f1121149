package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines transcript persistence. Session lifecycle
// (create/delete) is owned elsewhere; this gateway only appends messages
// and bumps session metadata.
type Repository interface {
	AppendExchange(ctx context.Context, sessionID string, userMsg, assistantMsg Message) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}

// PostgresRepository implements Repository on the sessions/messages tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// AppendExchange writes both turns and the session metadata bump in one
// transaction, so a transcript never contains a user message without its
// assistant reply.
func (r *PostgresRepository) AppendExchange(ctx context.Context, sessionID string, userMsg, assistantMsg Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transcript transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, msg := range []Message{userMsg, assistantMsg} {
		_, err = tx.Exec(ctx,
			`INSERT INTO messages (id, session_id, role, content, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), sessionID, msg.Role, msg.Content, msg.Timestamp)
		if err != nil {
			return fmt.Errorf("inserting %s message: %w", msg.Role, err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, last_message, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET last_message = EXCLUDED.last_message, updated_at = NOW()`,
		sessionID, summarize(assistantMsg.Content))
	if err != nil {
		return fmt.Errorf("bumping session metadata: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transcript: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit prior turns, oldest first.
func (r *PostgresRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, content, created_at
		 FROM messages
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returned newest first; callers want chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func summarize(content string) string {
	const max = 120
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
