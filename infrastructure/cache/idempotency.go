package cache

import (
	"context"
	"sync"
	"time"
)

// IIdempotencyStore de-duplicates requests carrying the same key within scope.
// TryLock claims a key for the first caller, Remember maps the key to the
// result of the finished request and Recall returns it.
type IIdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Forget(ctx context.Context, scope, key string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryIdempotencyStore keeps keys in process; used when no Redis address is configured.
type MemoryIdempotencyStore struct {
	mutex  sync.Mutex
	ttl    time.Duration
	locks  map[string]time.Time
	values map[string]memoryEntry
	now    func() time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:    ttl,
		locks:  make(map[string]time.Time, 64),
		values: make(map[string]memoryEntry, 64),
		now:    time.Now,
	}
}

func (s *MemoryIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	lockKey := scope + ":" + key
	if expiresAt, ok := s.locks[lockKey]; ok && s.now().Before(expiresAt) {
		return false, nil
	}
	s.locks[lockKey] = s.now().Add(s.ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[scope+":"+key] = memoryEntry{value: value, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, ok := s.values[scope+":"+key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryIdempotencyStore) Forget(_ context.Context, scope, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.locks, scope+":"+key)
	return nil
}

var _ IIdempotencyStore = (*MemoryIdempotencyStore)(nil)
