package session

import (
	"context"
	"log/slog"
	"time"
)

const (
	cacheMaxMessages = 40
	cacheTTL         = 24 * time.Hour
)

// Store layers the Redis short-term cache over the Postgres transcript.
// Postgres is the source of truth; the cache is best-effort.
type Store struct {
	repo  Repository
	cache *ShortTermStore
}

func NewStore(repo Repository, cache *ShortTermStore) *Store {
	return &Store{repo: repo, cache: cache}
}

// Append persists the exchange to Postgres and mirrors it into the cache.
// A cache write failure is logged, not returned: the transcript is already
// durable.
func (s *Store) Append(ctx context.Context, sessionID string, userMsg, assistantMsg Message) error {
	if err := s.repo.AppendExchange(ctx, sessionID, userMsg, assistantMsg); err != nil {
		return err
	}
	for _, msg := range []Message{userMsg, assistantMsg} {
		if err := s.cache.AppendMessage(ctx, sessionID, msg, cacheMaxMessages, cacheTTL); err != nil {
			slog.Warn("conversation cache write failed", "session_id", sessionID, "error", err)
			break
		}
	}
	return nil
}

// Recent reads the last `limit` turns, preferring the cache and falling back
// to Postgres when the cache is empty or unavailable.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	msgs, err := s.cache.GetRecentMessages(ctx, sessionID, limit)
	if err != nil {
		slog.Warn("conversation cache read failed", "session_id", sessionID, "error", err)
	} else if len(msgs) > 0 {
		return msgs, nil
	}
	return s.repo.RecentMessages(ctx, sessionID, limit)
}
