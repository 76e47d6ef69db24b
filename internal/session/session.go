// Package session manages the device's authentication lifecycle: login,
// registration, logout, profile maintenance and session validity.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akorhonen/restaurant-browser/internal/api"
	"github.com/akorhonen/restaurant-browser/internal/clientstate"
	"github.com/akorhonen/restaurant-browser/internal/models"
)

// ErrAuthRequired is returned when an operation needs a valid session and
// none is active.
var ErrAuthRequired = errors.New("authentication required")

// ErrEmptyUpdate is returned when a profile update carries no fields.
var ErrEmptyUpdate = errors.New("no profile fields to update")

// API is the remote surface the session manager needs.
type API interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, token string, update api.UserUpdate) (*models.User, error)
	UploadAvatar(ctx context.Context, token, filename string, file io.Reader) (*models.User, error)
	Restaurant(ctx context.Context, id string) (*models.Restaurant, error)
}

// FavouriteList is the favourites surface the session manager drives on
// login and when listing favourite restaurants.
type FavouriteList interface {
	MergeRemote(user *models.User)
	IDs() []string
}

// Manager ties client storage, the remote API and the favourite list
// together for session-scoped operations.
type Manager struct {
	store      clientstate.Store
	api        API
	favourites FavouriteList
	logger     *slog.Logger
}

func NewManager(store clientstate.Store, remote API, favourites FavouriteList, logger *slog.Logger) *Manager {
	return &Manager{store: store, api: remote, favourites: favourites, logger: logger}
}

// tokenValid reads the token's expiry without verifying the signature.
// Verification belongs to the server; the client only needs to know
// whether presenting the token is still worthwhile.
func tokenValid(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return exp.After(time.Now())
}

// Current returns the cached user for the active session. An absent or
// expired token yields ErrAuthRequired; an expired one is also cleared
// from storage. When no user is cached yet it is fetched and cached.
// Restoring a session runs the same favourite merge rule as login, so a
// remote single favourite seeds the local list on every session start.
func (m *Manager) Current(ctx context.Context) (*models.User, error) {
	token := m.store.Token()
	if token == "" {
		return nil, ErrAuthRequired
	}
	if !tokenValid(token) {
		m.logger.Info("session token expired, clearing session")
		if err := m.store.ClearSession(); err != nil {
			m.logger.Error("clearing expired session failed", slog.String("error", err.Error()))
		}
		return nil, ErrAuthRequired
	}

	user := m.store.User()
	if user == nil {
		var err error
		user, err = m.RefreshProfile(ctx)
		if err != nil {
			return nil, err
		}
	}
	m.favourites.MergeRemote(user)
	return user, nil
}

// Login authenticates, stores the session and merges the remote single
// favourite into the local list.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.User, error) {
	token, user, err := m.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := m.store.SetToken(token); err != nil {
		return nil, err
	}
	if user != nil {
		if err := m.store.SetUser(user); err != nil {
			m.logger.Error("caching user after login failed", slog.String("error", err.Error()))
		}
	}
	m.favourites.MergeRemote(user)
	return user, nil
}

// Register creates an account. The caller logs in separately; the server
// does not hand out a token on registration.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return m.api.Register(ctx, username, email, password)
}

// Logout drops the token and cached user. The favourite list survives on
// the device.
func (m *Manager) Logout() error {
	return m.store.ClearSession()
}

// RefreshProfile re-fetches the user record and refreshes the cache.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.User, error) {
	token := m.store.Token()
	if token == "" {
		return nil, ErrAuthRequired
	}

	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		m.logger.Error("caching refreshed user failed", slog.String("error", err.Error()))
	}
	return user, nil
}

// UpdateProfile sends the non-empty fields of the update and caches the
// server's copy of the user.
func (m *Manager) UpdateProfile(ctx context.Context, update api.UserUpdate) (*models.User, error) {
	if update == (api.UserUpdate{}) {
		return nil, ErrEmptyUpdate
	}
	token := m.store.Token()
	if token == "" {
		return nil, ErrAuthRequired
	}

	user, err := m.api.UpdateUser(ctx, token, update)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		m.logger.Error("caching updated user failed", slog.String("error", err.Error()))
	}
	return user, nil
}

// UploadAvatar uploads the image and caches the returned user.
func (m *Manager) UploadAvatar(ctx context.Context, filename string, file io.Reader) (*models.User, error) {
	token := m.store.Token()
	if token == "" {
		return nil, ErrAuthRequired
	}

	user, err := m.api.UploadAvatar(ctx, token, filename, file)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		m.logger.Error("caching user after avatar upload failed", slog.String("error", err.Error()))
	}
	return user, nil
}

// FavouriteRestaurants resolves the favourite id list into full catalog
// entries, preserving list order. Ids that fail to resolve are skipped so
// one stale favourite cannot hide the rest.
func (m *Manager) FavouriteRestaurants(ctx context.Context) []models.Restaurant {
	ids := m.favourites.IDs()
	out := make([]models.Restaurant, 0, len(ids))
	for _, id := range ids {
		restaurant, err := m.api.Restaurant(ctx, id)
		if err != nil {
			m.logger.Warn("resolving favourite restaurant failed",
				slog.String("restaurant_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, *restaurant)
	}
	return out
}
