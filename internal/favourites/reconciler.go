// Package favourites reconciles the local multi-favourite list with the
// remote API's legacy single-favourite field.
//
// The local list is authoritative for the device: every toggle persists
// to client storage before any network step, and a failed remote sync
// never rolls the toggle back. The first list entry (the primary
// favourite) is mirrored to the server after every mutation for backward
// compatibility with single-favourite clients.
package favourites

import (
	"context"
	"log/slog"
	"sync"

	"github.com/akorhonen/restaurant-browser/internal/clientstate"
	"github.com/akorhonen/restaurant-browser/internal/models"
)

// RemoteSyncer pushes the primary favourite to the remote user record.
type RemoteSyncer interface {
	UpdateFavouriteRestaurant(ctx context.Context, token, restaurantID string) (*models.User, error)
}

// Reconciler owns the favourite-id list.
type Reconciler struct {
	mu     sync.Mutex
	store  clientstate.Store
	remote RemoteSyncer
	logger *slog.Logger

	ids      []string
	onChange func()
}

// New loads the favourite list from client storage and returns a ready
// reconciler.
func New(store clientstate.Store, remote RemoteSyncer, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		remote: remote,
		logger: logger,
		ids:    store.FavouriteIDs(),
	}
}

// SetOnChange registers a callback invoked after the cached user has been
// refreshed from a successful remote sync, so favourite-dependent views
// can re-render.
func (r *Reconciler) SetOnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// IsFavourite reports membership in the favourite list.
func (r *Reconciler) IsFavourite(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fav := range r.ids {
		if fav == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the favourite list in insertion order.
func (r *Reconciler) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Primary returns the first favourite, or empty when the list is empty.
func (r *Reconciler) Primary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ids) == 0 {
		return ""
	}
	return r.ids[0]
}

// Toggle flips membership for the given restaurant id and returns the new
// membership state. Without an active session token the call is a silent
// no-op. The list is persisted before the remote sync, and a remote
// failure is logged without rolling back.
func (r *Reconciler) Toggle(ctx context.Context, id string) bool {
	token := r.store.Token()
	if token == "" {
		return r.IsFavourite(id)
	}

	r.mu.Lock()

	member := false
	next := r.ids[:0:0]
	for _, fav := range r.ids {
		if fav == id {
			member = true
			continue
		}
		next = append(next, fav)
	}
	if !member {
		// Append at the end: insertion order is recency.
		next = append(next, id)
	}
	r.ids = next

	if err := r.store.SetFavouriteIDs(r.ids); err != nil {
		r.logger.Error("persisting favourite list failed",
			slog.String("restaurant_id", id),
			slog.String("error", err.Error()),
		)
	}

	primary := ""
	if len(r.ids) > 0 {
		primary = r.ids[0]
	}
	notify := r.onChange
	r.mu.Unlock()

	r.syncPrimary(ctx, token, id, primary, notify)

	return !member
}

// MergeRemote applies the initialization merge rule: a remote single
// favourite missing from the local list is appended once, and the list
// is persisted immediately. Safe to run repeatedly.
func (r *Reconciler) MergeRemote(user *models.User) {
	if user == nil || user.FavouriteRestaurant == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, fav := range r.ids {
		if fav == user.FavouriteRestaurant {
			return
		}
	}
	r.ids = append(r.ids, user.FavouriteRestaurant)

	if err := r.store.SetFavouriteIDs(r.ids); err != nil {
		r.logger.Error("persisting merged favourite list failed",
			slog.String("restaurant_id", user.FavouriteRestaurant),
			slog.String("error", err.Error()),
		)
	}
}

// syncPrimary mirrors the primary favourite to the remote single-favourite
// field. The local toggle is already durable at this point; failures are
// logged and left for a later mutation to repair.
func (r *Reconciler) syncPrimary(ctx context.Context, token, toggledID, primary string, notify func()) {
	updated, err := r.remote.UpdateFavouriteRestaurant(ctx, token, primary)
	if err != nil {
		r.logger.Warn("syncing primary favourite failed",
			slog.String("restaurant_id", toggledID),
			slog.String("primary", primary),
			slog.String("error", err.Error()),
		)
		return
	}

	// The server is authoritative for the user record itself.
	if err := r.store.SetUser(updated); err != nil {
		r.logger.Error("caching updated user failed", slog.String("error", err.Error()))
	}
	if notify != nil {
		notify()
	}
}
