package magiclink

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is a process local Store for development and tests
type MemoryStore struct {
	entries map[string]memoryEntry
	nowTime func() time.Time
	lock    sync.Mutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(nowTime func() time.Time) *MemoryStore {
	if nowTime == nil {
		nowTime = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		nowTime: nowTime,
	}
}

func (s *MemoryStore) Put(_ context.Context, token string, entry Entry, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sweep()
	if _, ok := s.entries[key(token)]; ok {
		return apperrors.ErrDuplicate
	}
	s.entries[key(token)] = memoryEntry{entry: entry, expiresAt: s.nowTime().Add(ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (*Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sweep()
	e, ok := s.entries[key(token)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	delete(s.entries, key(token))
	return &e.entry, nil
}

// sweep drops expired entries, must be called with the lock held
func (s *MemoryStore) sweep() {
	now := s.nowTime()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
