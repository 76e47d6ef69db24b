// Package clientstate persists the device-local client state: the session
// token, the cached user and the favourite restaurant id list. Each value
// is written synchronously on every mutation. Unreadable or malformed
// values degrade to their zero value, never to an error surfaced upward.
package clientstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

// Store defines the durable client-state operations.
type Store interface {
	Token() string
	SetToken(token string) error
	User() *models.User
	SetUser(user *models.User) error
	FavouriteIDs() []string
	SetFavouriteIDs(ids []string) error
	// ClearSession removes the token and cached user. The favourite id
	// list is left untouched so favourites survive across logins on the
	// same device.
	ClearSession() error
}

const (
	tokenFile      = "auth_token"
	userFile       = "current_user.json"
	favouritesFile = "favourite_restaurants.json"
)

// FileStore keeps each value in its own file under a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Token() string {
	data, err := os.ReadFile(s.path(tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *FileStore) SetToken(token string) error {
	if err := os.WriteFile(s.path(tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing session token: %w", err)
	}
	return nil
}

func (s *FileStore) User() *models.User {
	data, err := os.ReadFile(s.path(userFile))
	if err != nil {
		return nil
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}

func (s *FileStore) SetUser(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshalling user: %w", err)
	}
	if err := os.WriteFile(s.path(userFile), data, 0o600); err != nil {
		return fmt.Errorf("writing cached user: %w", err)
	}
	return nil
}

func (s *FileStore) FavouriteIDs() []string {
	data, err := os.ReadFile(s.path(favouritesFile))
	if err != nil {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return []string{}
	}
	return ids
}

func (s *FileStore) SetFavouriteIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshalling favourite ids: %w", err)
	}
	if err := os.WriteFile(s.path(favouritesFile), data, 0o600); err != nil {
		return fmt.Errorf("writing favourite ids: %w", err)
	}
	return nil
}

func (s *FileStore) ClearSession() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}
