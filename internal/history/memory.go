package history

import (
	"context"
	"sync"

	"pemapp/internal/models"
)

// MemoryStore keeps histories in process memory. It backs tests and runs
// without a database configured; entries do not survive a restart.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[string][]models.HistoryItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]models.HistoryItem)}
}

func (s *MemoryStore) Append(ctx context.Context, namespace string, item models.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[namespace] = Trim(append(s.lists[namespace], item))
	return nil
}

func (s *MemoryStore) List(ctx context.Context, namespace string) ([]models.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.lists[namespace]
	out := make([]models.HistoryItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, namespace, id string) (models.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.lists[namespace] {
		if item.ID == id {
			return item, nil
		}
	}
	return models.HistoryItem{}, ErrNotFound
}

func (s *MemoryStore) Remove(ctx context.Context, namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.lists[namespace]
	for i, item := range items {
		if item.ID == id {
			s.lists[namespace] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
