package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShortTermStore caches recent conversation turns in Redis lists so the
// context window can be assembled without a database round trip.
type ShortTermStore struct {
	client *redis.Client
}

func NewShortTermStore(client *redis.Client) *ShortTermStore {
	return &ShortTermStore{client: client}
}

func convKey(sessionID string) string {
	return "conv:" + sessionID
}

// GetRecentMessages returns the last `limit` cached turns for the session,
// oldest first.
func (s *ShortTermStore) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	key := convKey(sessionID)

	// LRANGE key -limit -1 returns the last `limit` elements
	vals, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	msgs := make([]Message, 0, len(vals))
	for _, v := range vals {
		var m Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue // skip malformed entries
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// AppendMessage pushes a turn onto the session's list, trims to maxMsgs and
// refreshes the TTL.
func (s *ShortTermStore) AppendMessage(ctx context.Context, sessionID string, msg Message, maxMsgs int, ttl time.Duration) error {
	key := convKey(sessionID)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-maxMsgs), -1)
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// ClearConversation drops the cached turns for the session.
func (s *ShortTermStore) ClearConversation(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, convKey(sessionID)).Err()
}
