package notifystore

import (
	"context"
	"sync"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

// MemoryStore keeps the history in process. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	limit int
	items []notification.Notification
}

// NewMemoryStore constructs an empty history bounded by limit.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{limit: normalizeLimit(limit)}
}

func (s *MemoryStore) Save(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := min(len(s.items), s.limit-1)
	items := make([]notification.Notification, 0, keep+1)
	items = append(items, n)
	items = append(items, s.items[:keep]...)
	s.items = items
	return nil
}

func (s *MemoryStore) List(context.Context) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]notification.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (s *MemoryStore) MarkAllRead(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotFound
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return notification.DefaultHistoryLimit
	}
	return limit
}

var _ notification.Store = (*MemoryStore)(nil)
