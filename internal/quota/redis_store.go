package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "quota:record:"
	recordTTL       = 48 * time.Hour
	maxTxRetries    = 5
)

// RedisStore implements Store with an optimistic WATCH/MULTI transaction
// per record key. Conflicting concurrent transactions retry, bounded by
// maxTxRetries, so updates for one identity are serializable even across
// process instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Update(ctx context.Context, key string, fn func(*Record)) error {
	rkey := recordKeyPrefix + key

	txf := func(tx *redis.Tx) error {
		var rec Record
		data, err := tx.Get(ctx, rkey).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &rec); err != nil {
				// Corrupt record: start over rather than wedging the caller.
				rec = Record{}
			}
		case errors.Is(err, redis.Nil):
			// Lazily created on first request.
		default:
			return fmt.Errorf("reading quota record: %w", err)
		}

		fn(&rec)

		payload, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("encoding quota record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rkey, payload, recordTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, rkey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // concurrent write, retry
		}
		return fmt.Errorf("quota transaction for %s: %w", key, err)
	}
	return fmt.Errorf("quota transaction for %s: conflict retries exhausted", key)
}
