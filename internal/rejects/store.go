package rejects

import (
	"sync"
	"time"

	"venuepipe/internal/model"
)

// Store keeps the most recent rejections in a bounded buffer.
type Store struct {
	mu    sync.RWMutex
	buf   []model.Rejection
	limit int
	total int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1000
	}
	return &Store{limit: limit}
}

func (s *Store) Add(rej model.Rejection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, rej)
		return
	}
	copy(s.buf, s.buf[1:])
	s.buf[len(s.buf)-1] = rej
}

// List returns up to limit of the newest rejections, oldest first.
func (s *Store) List(limit int) []model.Rejection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Rejection, 0, limit)
	for i := len(s.buf) - limit; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

func (s *Store) Since(ts time.Time) []model.Rejection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rejection, 0)
	for _, r := range s.buf {
		if !r.Time.Before(ts) {
			out = append(out, r)
		}
	}
	return out
}

// Total counts every rejection ever added, including evicted ones.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
