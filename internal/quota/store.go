package quota

import (
	"context"
	"sync"
)

// Store is an atomic read-modify-write on a keyed quota record. Updates
// for the same key must be serializable: two concurrent Update calls must
// never both observe the state preceding the other's write. Records are
// created lazily on first Update and never deleted.
type Store interface {
	Update(ctx context.Context, key string, fn func(*Record)) error
}

// MemoryStore is a mutex-guarded in-process Store, used in tests and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn func(*Record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		rec = &Record{}
		s.records[key] = rec
	}
	fn(rec)
	return nil
}
