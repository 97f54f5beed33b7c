package repository

import (
	"context"
	"sync"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// MemoryStore keeps the last N records in a ring buffer.
type MemoryStore struct {
	mu    sync.RWMutex
	buf   []model.EpisodeRecord
	next  int
	count int
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{buf: make([]model.EpisodeRecord, o.capacity)}
}

func (s *MemoryStore) Record(_ context.Context, rec model.EpisodeRecord) error { //nolint:gocritic // hugeParam: stored by value
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf[s.next] = rec
	s.next = (s.next + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, n int) ([]model.EpisodeRecord, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.count {
		n = s.count
	}
	out := make([]model.EpisodeRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out, nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}
