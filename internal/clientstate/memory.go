package clientstate

import (
	"sync"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

// MemoryStore is a simple in-memory Store intended for unit tests only.
type MemoryStore struct {
	mu         sync.RWMutex
	token      string
	user       *models.User
	favourites []string
}

// NewMemoryStore returns a MemoryStore for testing.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{favourites: []string{}}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *MemoryStore) SetUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	u := *user
	s.user = &u
	return nil
}

func (s *MemoryStore) FavouriteIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.favourites))
	copy(out, s.favourites)
	return out
}

func (s *MemoryStore) SetFavouriteIDs(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favourites = make([]string, len(ids))
	copy(s.favourites, ids)
	return nil
}

func (s *MemoryStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
