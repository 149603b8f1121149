package crisislog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry records a crisis detection hit for clinical review. Kept separate
// from the general audit trail so reviewers can query escalations directly.
type Entry struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	SessionID       string    `json:"session_id"`
	Level           int       `json:"level"`
	MatchedKeywords []string  `json:"matched_keywords"`
	Escalated       bool      `json:"escalated"`
	CreatedAt       time.Time `json:"created_at"`
}

// Repository handles crisis_logs PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new crisislog Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a crisis log entry.
func (r *Repository) Insert(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO crisis_logs (id, user_id, session_id, level, matched_keywords, escalated, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserID, entry.SessionID, entry.Level, entry.MatchedKeywords, entry.Escalated, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting crisis log: %w", err)
	}
	return nil
}

// RecentForUser returns the most recent crisis entries for a user, newest
// first.
func (r *Repository) RecentForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, session_id, level, matched_keywords, escalated, created_at
		 FROM crisis_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying crisis logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SessionID, &e.Level,
			&e.MatchedKeywords, &e.Escalated, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning crisis log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
